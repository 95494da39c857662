package sampler

import (
	"testing"

	"chargen/src/catalog"
	"chargen/src/constraint"
	"chargen/src/store"
)

func fixture(t *testing.T) (*catalog.Catalog, *store.Store, *constraint.Engine) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	st := store.New(cat)
	return cat, st, constraint.New(st)
}

func TestRandomizeSlot(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 1)

	if err := s.RandomizeSlot(st, "hair_color"); err != nil {
		t.Fatalf("RandomizeSlot() failed: %v", err)
	}
	state, _ := st.Slot("hair_color")
	if state.Value == "" {
		t.Fatal("slot has no value after randomize")
	}
	def, _ := cat.Slot("hair_color")
	if _, ok := def.OptionByID(state.Value); !ok {
		t.Errorf("randomized value %q not in catalog", state.Value)
	}
	if state.Color != "" {
		t.Error("non-color slot should not receive a color")
	}
}

func TestRandomizeSlotAssignsColor(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 2)

	if err := s.RandomizeSlot(st, "upper_body"); err != nil {
		t.Fatal(err)
	}
	state, _ := st.Slot("upper_body")
	if state.Color == "" {
		t.Error("clothing slot should receive a color when the palette is enabled")
	}
}

func TestRandomizeSlotRespectsLock(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 3)

	if err := st.SetLocked("hair_color", true); err != nil {
		t.Fatal(err)
	}
	if err := s.RandomizeSlot(st, "hair_color"); err == nil {
		t.Error("randomizing a locked slot should fail")
	}
}

func TestRandomizeSlotHonorsDisabledGroups(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 4)

	if err := st.SoloGroup("upper_body", "fantasy"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		if err := s.RandomizeSlot(st, "upper_body"); err != nil {
			t.Fatal(err)
		}
		state, _ := st.Slot("upper_body")
		def, _ := cat.Slot("upper_body")
		opt, ok := def.OptionByID(state.Value)
		if !ok {
			t.Fatalf("unknown value %q", state.Value)
		}
		if opt.Group != "fantasy" {
			t.Fatalf("draw %d picked %q from group %q, want fantasy only", i, opt.ID, opt.Group)
		}
	}
}

func TestRandomizeSlotPaletteColors(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 5)

	st.SetPalette(true, "monochrome")
	allowed := map[string]bool{"black": true, "white": true, "grey": true}

	for i := 0; i < 30; i++ {
		if err := s.RandomizeSlot(st, "feet"); err != nil {
			t.Fatal(err)
		}
		state, _ := st.Slot("feet")
		if !allowed[state.Color] {
			t.Fatalf("draw %d picked color %q outside the active palette", i, state.Color)
		}
	}
}

func TestRandomizeSlotKeepsColorWhenPaletteLocked(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 10)

	if err := st.SetColor("feet", "gold"); err != nil {
		t.Fatal(err)
	}
	st.SetPaletteLocked(true)

	if err := s.RandomizeSlot(st, "feet"); err != nil {
		t.Fatal(err)
	}
	state, _ := st.Slot("feet")
	if state.Color != "gold" {
		t.Errorf("locked palette should keep color gold, got %q", state.Color)
	}
	if state.Value == "" {
		t.Error("slot value should still be drawn with the palette locked")
	}
}

func TestApplyPaletteRefusedWhenLocked(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 11)

	st.SetPaletteLocked(true)
	if err := s.ApplyPalette(st, "marine"); err == nil {
		t.Error("applying a palette with the palette locked should fail")
	}
}

func TestRandomizeSlotNoColorWhenPaletteOff(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 6)

	st.SetPalette(false, "")
	if err := s.RandomizeSlot(st, "feet"); err != nil {
		t.Fatal(err)
	}
	state, _ := st.Slot("feet")
	if state.Color != "" {
		t.Errorf("palette disabled but color %q assigned", state.Color)
	}
}

func TestRandomizeAll(t *testing.T) {
	cat, st, eng := fixture(t)
	s := NewWithSeed(cat, 7)

	if err := st.SetLocked("hair_color", true); err != nil {
		t.Fatal(err)
	}

	if err := s.RandomizeAll(st, eng); err != nil {
		t.Fatalf("RandomizeAll() failed: %v", err)
	}

	locked, _ := st.Slot("hair_color")
	if locked.Value != "" {
		t.Error("locked slot should be skipped")
	}

	disabled, _ := st.Slot("full_body")
	if disabled.Value != "" {
		t.Error("disabled slot should be skipped")
	}

	eyes, _ := st.Slot("eye_color")
	if eyes.Value == "" {
		t.Error("enabled unlocked slot should be drawn")
	}
}

func TestRandomizeAllSkipsSuppressedLegs(t *testing.T) {
	cat, st, eng := fixture(t)
	s := NewWithSeed(cat, 8)

	// Force a covering lower_body pick, then randomize everything.
	if err := st.SetValue("lower_body", "jeans"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetLocked("lower_body", true); err != nil {
		t.Fatal(err)
	}
	eng.Reevaluate()

	if err := s.RandomizeAll(st, eng); err != nil {
		t.Fatal(err)
	}
	legs, _ := st.Slot("legs")
	if legs.Value != "" {
		t.Error("legs is suppressed by jeans and must not be drawn")
	}
}

func TestRandomizeAllSkipsEmptyPools(t *testing.T) {
	cat, st, eng := fixture(t)
	s := NewWithSeed(cat, 9)

	// With both background groups off the slot has nothing to draw from;
	// the sweep continues past it.
	if err := st.ToggleGroup("background", "indoor"); err != nil {
		t.Fatal(err)
	}
	if err := st.ToggleGroup("background", "outdoor"); err != nil {
		t.Fatal(err)
	}

	if err := s.RandomizeAll(st, eng); err != nil {
		t.Fatalf("RandomizeAll() failed: %v", err)
	}

	bg, _ := st.Slot("background")
	if bg.Value != "" {
		t.Error("background has no selectable options and must stay empty")
	}
	eyes, _ := st.Slot("eye_color")
	if eyes.Value == "" {
		t.Error("other slots should still be drawn")
	}
}

func TestApplyPalette(t *testing.T) {
	cat, st, _ := fixture(t)
	s := NewWithSeed(cat, 9)

	if err := st.SetValue("upper_body", "blouse"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetValue("feet", "boots"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetColor("feet", "gold"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetLocked("feet", true); err != nil {
		t.Fatal(err)
	}

	if err := s.ApplyPalette(st, "marine"); err != nil {
		t.Fatalf("ApplyPalette() failed: %v", err)
	}

	allowed := map[string]bool{"navy": true, "blue": true, "white": true}
	ub, _ := st.Slot("upper_body")
	if !allowed[ub.Color] {
		t.Errorf("upper_body color %q outside palette", ub.Color)
	}
	feet, _ := st.Slot("feet")
	if feet.Color != "gold" {
		t.Error("locked slot should keep its color")
	}

	g := st.Global()
	if !g.PaletteEnabled || g.PaletteID != "marine" {
		t.Errorf("palette selection not recorded: %+v", g)
	}

	if err := s.ApplyPalette(st, "nonexistent"); err == nil {
		t.Error("expected error for unknown palette")
	}
}
