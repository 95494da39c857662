package catalog

import (
	"strings"

	"chargen/src/errors"
	"chargen/src/i18n"
)

// Option is one selectable value of a slot.
type Option struct {
	ID         string        `toml:"id"`
	Name       string        `toml:"name"`
	Labels     i18n.LabelMap `toml:"name_i18n"`
	Group      string        `toml:"group"`
	CoversLegs bool          `toml:"covers_legs"`
	UsesHands  bool          `toml:"uses_hands"`
}

// SlotDefinition describes one configurable slot and its option pool.
// Definitions are immutable after catalog load.
type SlotDefinition struct {
	Name     string
	Category string
	HasColor bool
	Options  []Option
}

// Groups returns the distinct option group keys of this slot, in option order.
func (d *SlotDefinition) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, opt := range d.Options {
		if opt.Group == "" || seen[opt.Group] {
			continue
		}
		seen[opt.Group] = true
		groups = append(groups, opt.Group)
	}
	return groups
}

// OptionByID looks up an option of this slot by id.
func (d *SlotDefinition) OptionByID(id string) (Option, bool) {
	for _, opt := range d.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// SelectableOptions returns the options not excluded by the given disabled
// group set.
func (d *SlotDefinition) SelectableOptions(disabledGroups map[string]bool) []Option {
	if len(disabledGroups) == 0 {
		return d.Options
	}
	var out []Option
	for _, opt := range d.Options {
		if opt.Group != "" && disabledGroups[opt.Group] {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// Palette is a named set of color tokens.
type Palette struct {
	ID     string        `toml:"id"`
	Name   string        `toml:"name"`
	Labels i18n.LabelMap `toml:"name_i18n"`
	Colors []string      `toml:"colors"`
}

// Section groups slots for presentation.
type Section struct {
	Key    string
	Labels i18n.LabelMap
	Slots  []string
}

// CoverageRule declares that an option of the governing slot suppresses the
// dependent slot's contribution while selected.
type CoverageRule struct {
	Slot      string
	Dependent string
	ByOption  map[string]bool
}

// Catalog is the full static slot registry. Loaded once, read-only thereafter.
type Catalog struct {
	order           []string
	defaultDisabled []string
	slots           map[string]*SlotDefinition
	sections        []Section
	coverage        []CoverageRule
	palettes        []Palette
	palettesByID    map[string]*Palette
	colors          []string
	colorLabels     map[string]i18n.LabelMap
}

// Order returns the fixed prompt-assembly slot order.
func (c *Catalog) Order() []string {
	return c.order
}

// DefaultDisabled returns the slots that start disabled on a fresh state.
func (c *Catalog) DefaultDisabled() []string {
	return c.defaultDisabled
}

// Slot returns the definition for a slot name.
func (c *Catalog) Slot(name string) (*SlotDefinition, error) {
	def, ok := c.slots[name]
	if !ok {
		return nil, errors.WrapWithContext(errors.ErrSlotNotFound, "slot %q", name)
	}
	return def, nil
}

// HasSlot reports whether the catalog defines the given slot.
func (c *Catalog) HasSlot(name string) bool {
	_, ok := c.slots[name]
	return ok
}

// SlotNames returns every defined slot name in prompt order.
func (c *Catalog) SlotNames() []string {
	return c.order
}

// Sections returns the section layout in display order.
func (c *Catalog) Sections() []Section {
	return c.sections
}

// CoverageRules returns the inter-slot suppression rules.
func (c *Catalog) CoverageRules() []CoverageRule {
	return c.coverage
}

// OptionLabel resolves the localized display text of a slot option.
// Unknown slot or option ids yield an empty string so that stale saved
// state degrades silently.
func (c *Catalog) OptionLabel(slotName, optionID, locale string) string {
	def, ok := c.slots[slotName]
	if !ok || optionID == "" {
		return ""
	}
	opt, ok := def.OptionByID(optionID)
	if !ok {
		return ""
	}
	return i18n.Localize(opt.Labels, locale, opt.Name)
}

// ColorLabel resolves the localized display text of a color token.
func (c *Catalog) ColorLabel(token, locale string) string {
	if token == "" {
		return ""
	}
	if labels, ok := c.colorLabels[token]; ok {
		return i18n.Localize(labels, locale, token)
	}
	return token
}

// Palettes returns all palettes in catalog order.
func (c *Catalog) Palettes() []Palette {
	return c.palettes
}

// PaletteByID looks up a palette.
func (c *Catalog) PaletteByID(id string) (*Palette, error) {
	p, ok := c.palettesByID[id]
	if !ok {
		return nil, errors.WrapWithContext(errors.ErrPaletteNotFound, "palette %q", id)
	}
	return p, nil
}

// IndividualColors returns the canonical color vocabulary.
func (c *Catalog) IndividualColors() []string {
	return c.colors
}

// ColorLabels returns the localized labels for every known color token.
func (c *Catalog) ColorLabels() map[string]i18n.LabelMap {
	return c.colorLabels
}

// ResolveLegacyValue converts a saved display text back to a canonical option
// id for a slot, matching against ids and every localized label.
func (c *Catalog) ResolveLegacyValue(slotName, legacyValue string) string {
	if legacyValue == "" {
		return ""
	}
	def, ok := c.slots[slotName]
	if !ok {
		return ""
	}
	needle := strings.ToLower(strings.TrimSpace(legacyValue))
	for _, opt := range def.Options {
		candidates := []string{opt.ID, opt.Name}
		for _, label := range opt.Labels {
			candidates = append(candidates, label)
		}
		for _, candidate := range candidates {
			if candidate != "" && strings.ToLower(strings.TrimSpace(candidate)) == needle {
				return opt.ID
			}
		}
	}
	return ""
}
