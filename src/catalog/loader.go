package catalog

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"chargen/src/config"
	"chargen/src/i18n"

	"github.com/BurntSushi/toml"
)

//go:embed data/*.toml
var embeddedCatalogs embed.FS

var (
	catalogCache     *Catalog
	catalogCacheLock sync.RWMutex
)

// slotsFile mirrors the on-disk shape of slots.toml
type slotsFile struct {
	Order           []string            `toml:"order"`
	DefaultDisabled []string            `toml:"default_disabled"`
	Slots           map[string]slotSpec `toml:"slots"`
}

type slotSpec struct {
	Category string   `toml:"category"`
	HasColor bool     `toml:"has_color"`
	Options  []Option `toml:"options"`
}

// palettesFile mirrors palettes.toml
type palettesFile struct {
	IndividualColors []string                 `toml:"individual_colors"`
	ColorsI18n       map[string]i18n.LabelMap `toml:"colors_i18n"`
	Palettes         []Palette                `toml:"palettes"`
}

// sectionsFile mirrors sections.toml
type sectionsFile struct {
	Order    []string               `toml:"order"`
	Sections map[string]sectionSpec `toml:"sections"`
}

type sectionSpec struct {
	Labels i18n.LabelMap `toml:"label_i18n"`
	Slots  []string      `toml:"slots"`
}

// Load returns the slot catalog, checking the user catalog directory first
// and falling back to the embedded defaults. The result is cached for the
// lifetime of the process.
func Load() (*Catalog, error) {
	catalogCacheLock.RLock()
	if catalogCache != nil {
		cached := catalogCache
		catalogCacheLock.RUnlock()
		return cached, nil
	}
	catalogCacheLock.RUnlock()

	cat, err := load()
	if err != nil {
		return nil, err
	}

	catalogCacheLock.Lock()
	catalogCache = cat
	catalogCacheLock.Unlock()
	return cat, nil
}

// Reset drops the cached catalog so the next Load re-reads from disk.
// Used by tests and by SIGHUP config reload.
func Reset() {
	catalogCacheLock.Lock()
	catalogCache = nil
	catalogCacheLock.Unlock()
}

func load() (*Catalog, error) {
	var slots slotsFile
	if err := decodeCatalogFile("slots.toml", &slots); err != nil {
		return nil, fmt.Errorf("failed to load slot catalog: %w", err)
	}

	var palettes palettesFile
	if err := decodeCatalogFile("palettes.toml", &palettes); err != nil {
		return nil, fmt.Errorf("failed to load palette catalog: %w", err)
	}

	var sections sectionsFile
	if err := decodeCatalogFile("sections.toml", &sections); err != nil {
		return nil, fmt.Errorf("failed to load section layout: %w", err)
	}

	cat := &Catalog{
		order:           slots.Order,
		defaultDisabled: slots.DefaultDisabled,
		slots:           make(map[string]*SlotDefinition, len(slots.Slots)),
		palettesByID:    make(map[string]*Palette, len(palettes.Palettes)),
		colors:          palettes.IndividualColors,
		colorLabels:     palettes.ColorsI18n,
	}
	if cat.colorLabels == nil {
		cat.colorLabels = make(map[string]i18n.LabelMap)
	}

	for name, spec := range slots.Slots {
		cat.slots[name] = &SlotDefinition{
			Name:     name,
			Category: spec.Category,
			HasColor: spec.HasColor,
			Options:  spec.Options,
		}
	}

	// Every slot named in the order table must exist.
	for _, name := range slots.Order {
		if _, ok := cat.slots[name]; !ok {
			return nil, fmt.Errorf("slot catalog inconsistent: ordered slot %q has no definition", name)
		}
	}

	for i := range palettes.Palettes {
		p := &palettes.Palettes[i]
		cat.palettes = append(cat.palettes, *p)
		cat.palettesByID[p.ID] = p
	}

	for _, key := range sections.Order {
		spec, ok := sections.Sections[key]
		if !ok {
			return nil, fmt.Errorf("section layout inconsistent: ordered section %q has no definition", key)
		}
		cat.sections = append(cat.sections, Section{
			Key:    key,
			Labels: spec.Labels,
			Slots:  spec.Slots,
		})
	}

	cat.coverage = buildCoverageRules(cat)

	return cat, nil
}

// buildCoverageRules derives the inter-slot suppression rules from option
// flags: a lower-body option that covers legs suppresses the legs slot, and
// a pose that occupies the hands suppresses the gesture slot.
func buildCoverageRules(cat *Catalog) []CoverageRule {
	var rules []CoverageRule

	flagged := func(slot string, flag func(Option) bool) map[string]bool {
		def, ok := cat.slots[slot]
		if !ok {
			return nil
		}
		byOption := make(map[string]bool)
		for _, opt := range def.Options {
			if flag(opt) {
				byOption[opt.ID] = true
			}
		}
		if len(byOption) == 0 {
			return nil
		}
		return byOption
	}

	if byOption := flagged("lower_body", func(o Option) bool { return o.CoversLegs }); byOption != nil {
		rules = append(rules, CoverageRule{Slot: "lower_body", Dependent: "legs", ByOption: byOption})
	}
	if byOption := flagged("pose", func(o Option) bool { return o.UsesHands }); byOption != nil {
		rules = append(rules, CoverageRule{Slot: "pose", Dependent: "gesture", ByOption: byOption})
	}

	return rules
}

// decodeCatalogFile reads a catalog document from the user catalog directory
// if present, otherwise from the embedded defaults.
func decodeCatalogFile(name string, v interface{}) error {
	if data, err := readUserCatalogFile(name); err == nil {
		if _, err := toml.Decode(string(data), v); err != nil {
			return fmt.Errorf("failed to parse user catalog %s: %w", name, err)
		}
		return nil
	}

	data, err := embeddedCatalogs.ReadFile(filepath.Join("data", name))
	if err != nil {
		return fmt.Errorf("embedded catalog %s missing: %w", name, err)
	}
	if _, err := toml.Decode(string(data), v); err != nil {
		return fmt.Errorf("failed to parse embedded catalog %s: %w", name, err)
	}
	return nil
}

func readUserCatalogFile(name string) ([]byte, error) {
	catalogDir, err := config.GetCatalogDir()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(catalogDir, name))
}
