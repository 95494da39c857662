// Package sampler fills slots with random selections and re-imports
// existing prompt strings back into slot state.
package sampler

import (
	"math/rand"
	"time"

	"chargen/src/catalog"
	"chargen/src/constraint"
	"chargen/src/errors"
	"chargen/src/store"
)

// Sampler draws random options and colors for slots.
type Sampler struct {
	cat *catalog.Catalog
	rng *rand.Rand
}

// New builds a sampler seeded from the clock.
func New(cat *catalog.Catalog) *Sampler {
	return NewWithSeed(cat, time.Now().UnixNano())
}

// NewWithSeed builds a sampler with a fixed seed, for reproducible tests.
func NewWithSeed(cat *catalog.Catalog, seed int64) *Sampler {
	return &Sampler{cat: cat, rng: rand.New(rand.NewSource(seed))}
}

// RandomizeSlot draws a fresh option for one slot, honoring disabled groups
// and assigning a color on color-capable slots. Locked slots are refused.
func (s *Sampler) RandomizeSlot(st *store.Store, slot string) error {
	state, err := st.Slot(slot)
	if err != nil {
		return err
	}
	if state.Locked {
		return errors.WrapWithContext(errors.ErrSlotLocked, "randomize slot %q", slot)
	}
	def, err := s.cat.Slot(slot)
	if err != nil {
		return err
	}
	opts := def.SelectableOptions(st.DisabledGroups(slot))
	if len(opts) == 0 {
		return errors.WrapWithContext(errors.ErrOptionNotFound, "slot %q has no selectable options", slot)
	}
	pick := opts[s.rng.Intn(len(opts))]
	if err := st.SetValue(slot, pick.ID); err != nil {
		return err
	}
	if def.HasColor {
		g := st.Global()
		// A locked palette freezes color assignments across draws.
		if !g.PaletteLocked {
			if err := st.SetColor(slot, s.randomColor(g)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RandomizeAll draws options for every enabled, unlocked, non-suppressed
// slot in catalog order. Constraints re-evaluate after each draw so a
// covering pick suppresses its dependent before the dependent is reached.
func (s *Sampler) RandomizeAll(st *store.Store, eng *constraint.Engine) error {
	for _, name := range st.SlotNames() {
		state, err := st.Slot(name)
		if err != nil {
			return err
		}
		if !state.Enabled || state.Locked || state.Suppressed {
			continue
		}
		// A slot whose groups are all disabled has nothing to draw from;
		// leave it as-is rather than aborting the sweep.
		def, err := s.cat.Slot(name)
		if err != nil {
			return err
		}
		if len(def.SelectableOptions(st.DisabledGroups(name))) == 0 {
			continue
		}
		if err := s.RandomizeSlot(st, name); err != nil {
			return err
		}
		eng.Reevaluate()
	}
	return nil
}

// randomColor picks from the active palette when one is set, otherwise from
// the full color vocabulary. Returns "" when palette coloring is off.
func (s *Sampler) randomColor(g store.GlobalConfig) string {
	if !g.PaletteEnabled {
		return ""
	}
	pool := s.cat.IndividualColors()
	if g.PaletteID != "" {
		if p, err := s.cat.PaletteByID(g.PaletteID); err == nil && len(p.Colors) > 0 {
			pool = p.Colors
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[s.rng.Intn(len(pool))]
}

// ApplyPalette activates a palette and recolors every color-capable slot
// that currently has a selection. Locked slots keep their color.
func (s *Sampler) ApplyPalette(st *store.Store, paletteID string) error {
	if st.Global().PaletteLocked {
		return errors.WrapWithContext(errors.ErrPaletteLocked, "apply palette %q", paletteID)
	}
	p, err := s.cat.PaletteByID(paletteID)
	if err != nil {
		return err
	}
	st.SetPalette(true, p.ID)
	for _, name := range st.SlotNames() {
		def, err := s.cat.Slot(name)
		if err != nil || !def.HasColor {
			continue
		}
		state, err := st.Slot(name)
		if err != nil || state.Locked || state.Value == "" {
			continue
		}
		if len(p.Colors) == 0 {
			continue
		}
		if err := st.SetColor(name, p.Colors[s.rng.Intn(len(p.Colors))]); err != nil {
			return err
		}
	}
	return nil
}
