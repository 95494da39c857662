package store

import (
	"math"

	"chargen/src/catalog"
	"chargen/src/errors"
)

const (
	// MinWeight and MaxWeight bound per-slot emphasis weights.
	MinWeight = 0.1
	MaxWeight = 2.0

	// DefaultWeight is the neutral emphasis applied to fresh slots and
	// substituted for out-of-range or non-finite input.
	DefaultWeight = 1.0
)

// SlotState holds the live selection for a single slot.
type SlotState struct {
	Value      string  `json:"value"`
	Enabled    bool    `json:"enabled"`
	Locked     bool    `json:"locked"`
	Color      string  `json:"color,omitempty"`
	Weight     float64 `json:"weight"`
	Suppressed bool    `json:"-"`
}

// GlobalConfig carries cross-slot settings that shape the assembled prompt.
type GlobalConfig struct {
	SubjectTag     string `json:"subject_tag"`
	Prefix         string `json:"prefix"`
	UILocale       string `json:"ui_locale"`
	PromptLocale   string `json:"prompt_locale"`
	PaletteEnabled bool   `json:"palette_enabled"`
	PaletteID      string `json:"palette_id,omitempty"`
	PaletteLocked  bool   `json:"palette_locked,omitempty"`
}

// Snapshot is a point-in-time copy of the full configurator state, used by
// history entries and preset persistence.
type Snapshot struct {
	Slots          map[string]SlotState       `json:"slots"`
	DisabledGroups map[string]map[string]bool `json:"disabled_groups,omitempty"`
	Global         GlobalConfig               `json:"global"`

	// Mode flags at capture time, recorded for display purposes. Mode
	// state itself is ephemeral and is not re-entered on restore.
	FullBodyMode  bool `json:"full_body_mode,omitempty"`
	UpperBodyMode bool `json:"upper_body_mode,omitempty"`
}

// Store owns the mutable slot state for one configurator session. It is not
// safe for concurrent use; the session layer serializes all access.
type Store struct {
	cat   *catalog.Catalog
	slots map[string]*SlotState

	// Per-slot group controls. disabledGroups[slot][group] marks a group
	// excluded from selection and randomization. soloGroup records the
	// active solo, preSolo the disabled set captured when solo began.
	disabledGroups map[string]map[string]bool
	soloGroup      map[string]string
	preSolo        map[string]map[string]bool

	global GlobalConfig
}

// New builds a store with every catalog slot present, enabled by default
// except for the catalog's default-disabled list.
func New(cat *catalog.Catalog) *Store {
	s := &Store{
		cat:            cat,
		slots:          make(map[string]*SlotState),
		disabledGroups: make(map[string]map[string]bool),
		soloGroup:      make(map[string]string),
		preSolo:        make(map[string]map[string]bool),
		global: GlobalConfig{
			SubjectTag:     "1girl",
			UILocale:       "en",
			PromptLocale:   "en",
			PaletteEnabled: true,
		},
	}
	for _, name := range cat.Order() {
		s.slots[name] = &SlotState{Enabled: true, Weight: DefaultWeight}
	}
	for _, name := range cat.DefaultDisabled() {
		if st, ok := s.slots[name]; ok {
			st.Enabled = false
		}
	}
	return s
}

// Catalog returns the catalog this store was built against.
func (s *Store) Catalog() *catalog.Catalog {
	return s.cat
}

// Slot returns a copy of the named slot's state.
func (s *Store) Slot(name string) (SlotState, error) {
	st, ok := s.slots[name]
	if !ok {
		return SlotState{}, errors.WrapWithContext(errors.ErrSlotNotFound, "slot %q", name)
	}
	return *st, nil
}

func (s *Store) get(name string) (*SlotState, error) {
	st, ok := s.slots[name]
	if !ok {
		return nil, errors.WrapWithContext(errors.ErrSlotNotFound, "slot %q", name)
	}
	return st, nil
}

// SetValue selects an option for a slot. An empty id clears the selection.
// Locked slots reject value changes.
func (s *Store) SetValue(slot, optionID string) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	if st.Locked {
		return errors.WrapWithContext(errors.ErrSlotLocked, "slot %q", slot)
	}
	if optionID != "" {
		def, err := s.cat.Slot(slot)
		if err != nil {
			return err
		}
		if _, ok := def.OptionByID(optionID); !ok {
			return errors.WrapWithContext(errors.ErrOptionNotFound, "slot %q option %q", slot, optionID)
		}
	}
	st.Value = optionID
	return nil
}

// ClearValue removes the slot's selection, ignoring the lock flag. Used by
// randomize-all resets and restore paths.
func (s *Store) ClearValue(slot string) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	st.Value = ""
	return nil
}

// SetEnabled flips a slot's enabled flag.
func (s *Store) SetEnabled(slot string, enabled bool) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	st.Enabled = enabled
	return nil
}

// ToggleSlot inverts the enabled flag and returns the new value.
func (s *Store) ToggleSlot(slot string) (bool, error) {
	st, err := s.get(slot)
	if err != nil {
		return false, err
	}
	st.Enabled = !st.Enabled
	return st.Enabled, nil
}

// SetLocked marks a slot so randomization and value changes skip it.
func (s *Store) SetLocked(slot string, locked bool) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	st.Locked = locked
	return nil
}

// SetColor assigns a color token to a color-capable slot. An empty token
// clears the color. Unknown tokens are rejected.
func (s *Store) SetColor(slot, color string) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	def, err := s.cat.Slot(slot)
	if err != nil {
		return err
	}
	if !def.HasColor {
		return errors.WrapWithContext(errors.ErrColorNotSupported, "slot %q", slot)
	}
	if color != "" && !s.knownColor(color) {
		return errors.WrapWithContext(errors.ErrInvalidInput, "color %q", color)
	}
	st.Color = color
	return nil
}

func (s *Store) knownColor(color string) bool {
	for _, c := range s.cat.IndividualColors() {
		if c == color {
			return true
		}
	}
	return false
}

// SetWeight sets the emphasis weight, clamping into [MinWeight, MaxWeight].
// Non-finite input falls back to the neutral weight.
func (s *Store) SetWeight(slot string, weight float64) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	st.Weight = ClampWeight(weight)
	return nil
}

// ClampWeight normalizes an emphasis weight into the accepted range.
func ClampWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return DefaultWeight
	}
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}

// SetSuppressed is reserved for the constraint engine: it marks a slot as
// excluded from rendering without touching the user-visible enabled flag.
func (s *Store) SetSuppressed(slot string, suppressed bool) error {
	st, err := s.get(slot)
	if err != nil {
		return err
	}
	st.Suppressed = suppressed
	return nil
}

// ToggleGroup flips a group's disabled flag for a slot. Toggling any group
// cancels an active solo on that slot and discards its snapshot, since the
// user is now managing groups directly.
func (s *Store) ToggleGroup(slot, group string) error {
	if err := s.validateGroup(slot, group); err != nil {
		return err
	}
	if s.soloGroup[slot] != "" {
		delete(s.soloGroup, slot)
		delete(s.preSolo, slot)
	}
	m := s.disabledGroups[slot]
	if m == nil {
		m = make(map[string]bool)
		s.disabledGroups[slot] = m
	}
	if m[group] {
		delete(m, group)
	} else {
		m[group] = true
	}
	return nil
}

// SoloGroup disables every group on the slot except the given one. Soloing
// the already-active group un-solos: the pre-solo disabled set is restored.
func (s *Store) SoloGroup(slot, group string) error {
	if err := s.validateGroup(slot, group); err != nil {
		return err
	}
	if s.soloGroup[slot] == group {
		restored := s.preSolo[slot]
		if restored == nil {
			restored = make(map[string]bool)
		}
		s.disabledGroups[slot] = restored
		delete(s.soloGroup, slot)
		delete(s.preSolo, slot)
		return nil
	}
	def, err := s.cat.Slot(slot)
	if err != nil {
		return err
	}
	if s.soloGroup[slot] == "" {
		s.preSolo[slot] = copyGroupSet(s.disabledGroups[slot])
	}
	m := make(map[string]bool)
	for _, g := range def.Groups() {
		if g != group {
			m[g] = true
		}
	}
	s.disabledGroups[slot] = m
	s.soloGroup[slot] = group
	return nil
}

func (s *Store) validateGroup(slot, group string) error {
	def, err := s.cat.Slot(slot)
	if err != nil {
		return err
	}
	for _, g := range def.Groups() {
		if g == group {
			return nil
		}
	}
	return errors.WrapWithContext(errors.ErrInvalidInput, "slot %q has no group %q", slot, group)
}

// DisabledGroups returns a copy of the disabled-group set for a slot.
func (s *Store) DisabledGroups(slot string) map[string]bool {
	return copyGroupSet(s.disabledGroups[slot])
}

// SoloedGroup returns the active solo group for a slot, or "".
func (s *Store) SoloedGroup(slot string) string {
	return s.soloGroup[slot]
}

// IsGroupDisabled reports whether a group is currently excluded for a slot.
func (s *Store) IsGroupDisabled(slot, group string) bool {
	return s.disabledGroups[slot][group]
}

func copyGroupSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Global returns a copy of the global configuration.
func (s *Store) Global() GlobalConfig {
	return s.global
}

// SetGlobal replaces the global configuration.
func (s *Store) SetGlobal(g GlobalConfig) {
	s.global = g
}

// SetPrefix updates the free-text prefix prepended to generated prompts.
func (s *Store) SetPrefix(prefix string) {
	s.global.Prefix = prefix
}

// SetSubjectTag updates the leading subject token.
func (s *Store) SetSubjectTag(tag string) {
	s.global.SubjectTag = tag
}

// SetPalette records the active palette selection.
func (s *Store) SetPalette(enabled bool, paletteID string) {
	s.global.PaletteEnabled = enabled
	s.global.PaletteID = paletteID
}

// SetPaletteLocked freezes color assignments: while locked, randomization
// keeps existing colors and palette switches are refused.
func (s *Store) SetPaletteLocked(locked bool) {
	s.global.PaletteLocked = locked
}

// SetEnabledAll flips the enabled flag on a named set of slots. Unknown
// slot names are ignored.
func (s *Store) SetEnabledAll(slots []string, enabled bool) {
	for _, name := range slots {
		if st, ok := s.slots[name]; ok {
			st.Enabled = enabled
		}
	}
}

// Export captures the full state for history entries and presets.
func (s *Store) Export() Snapshot {
	snap := Snapshot{
		Slots:          make(map[string]SlotState, len(s.slots)),
		DisabledGroups: make(map[string]map[string]bool),
		Global:         s.global,
	}
	for name, st := range s.slots {
		snap.Slots[name] = *st
	}
	for slot, groups := range s.disabledGroups {
		if len(groups) > 0 {
			snap.DisabledGroups[slot] = copyGroupSet(groups)
		}
	}
	return snap
}

// Apply replaces the current state with a snapshot. Slots unknown to the
// catalog are dropped; slots missing from the snapshot keep their defaults
// so older snapshots stay loadable after catalog additions.
func (s *Store) Apply(snap Snapshot) {
	fresh := New(s.cat)
	s.slots = fresh.slots
	s.disabledGroups = make(map[string]map[string]bool)
	s.soloGroup = make(map[string]string)
	s.preSolo = make(map[string]map[string]bool)

	for name, st := range snap.Slots {
		if cur, ok := s.slots[name]; ok {
			copied := st
			copied.Weight = ClampWeight(copied.Weight)
			copied.Suppressed = false
			*cur = copied
		}
	}
	for slot, groups := range snap.DisabledGroups {
		if _, ok := s.slots[slot]; ok && len(groups) > 0 {
			s.disabledGroups[slot] = copyGroupSet(groups)
		}
	}
	s.global = snap.Global
}

// Reset restores factory defaults for slots and groups. Locale settings
// survive a reset; selections, prefix, and palette choice do not.
func (s *Store) Reset() {
	ui, prompt := s.global.UILocale, s.global.PromptLocale
	fresh := New(s.cat)
	s.slots = fresh.slots
	s.disabledGroups = make(map[string]map[string]bool)
	s.soloGroup = make(map[string]string)
	s.preSolo = make(map[string]map[string]bool)
	s.global = fresh.global
	s.global.UILocale = ui
	s.global.PromptLocale = prompt
}

// SlotNames returns slot names in catalog order.
func (s *Store) SlotNames() []string {
	return s.cat.Order()
}
