package prompt

import (
	"strings"
	"testing"

	"chargen/src/catalog"
	"chargen/src/store"
)

func fixture(t *testing.T) (*catalog.Catalog, *store.Store) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	st := store.New(cat)
	// Fragment-focused tests want no leading subject token.
	g := st.Global()
	g.SubjectTag = ""
	st.SetGlobal(g)
	return cat, st
}

func set(t *testing.T, st *store.Store, slot, option string) {
	t.Helper()
	if err := st.SetValue(slot, option); err != nil {
		t.Fatalf("SetValue(%q, %q) failed: %v", slot, option, err)
	}
}

func TestRenderOrder(t *testing.T) {
	cat, st := fixture(t)

	// Set in deliberately shuffled order; output must follow catalog order.
	set(t, st, "background", "beach")
	set(t, st, "hair_style", "ponytail")
	set(t, st, "hair_color", "red_hair")
	set(t, st, "expression", "smile")

	got := Render(cat, st.Export(), "en")
	want := "red hair, ponytail, smile, beach"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderSkipsDisabledAndEmpty(t *testing.T) {
	cat, st := fixture(t)

	set(t, st, "hair_color", "red_hair")
	set(t, st, "expression", "smile")
	if err := st.SetEnabled("expression", false); err != nil {
		t.Fatal(err)
	}

	got := Render(cat, st.Export(), "en")
	if got != "red hair" {
		t.Errorf("Render() = %q, want only the enabled selected slot", got)
	}
}

func TestRenderSkipsSuppressed(t *testing.T) {
	cat, st := fixture(t)

	set(t, st, "legs", "thighhighs")
	if err := st.SetSuppressed("legs", true); err != nil {
		t.Fatal(err)
	}

	if got := Render(cat, st.Export(), "en"); got != "" {
		t.Errorf("suppressed slot rendered: %q", got)
	}
}

func TestRenderColorPrefix(t *testing.T) {
	cat, st := fixture(t)

	set(t, st, "upper_body", "blouse")
	if err := st.SetColor("upper_body", "red"); err != nil {
		t.Fatal(err)
	}

	got := Render(cat, st.Export(), "en")
	if got != "red blouse" {
		t.Errorf("Render() = %q, want %q", got, "red blouse")
	}
}

func TestRenderWeightSyntax(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   string
	}{
		{"neutral weight plain", 1.0, "smile"},
		{"near-neutral plain", 1.04, "smile"},
		{"emphasized", 1.5, "(smile:1.5)"},
		{"de-emphasized", 0.5, "(smile:0.5)"},
		{"max weight", 2.0, "(smile:2.0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, st := fixture(t)
			set(t, st, "expression", "smile")
			if err := st.SetWeight("expression", tt.weight); err != nil {
				t.Fatal(err)
			}
			if got := Render(cat, st.Export(), "en"); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderWeightedColorFragment(t *testing.T) {
	cat, st := fixture(t)

	set(t, st, "upper_body", "blouse")
	if err := st.SetColor("upper_body", "navy"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetWeight("upper_body", 1.3); err != nil {
		t.Fatal(err)
	}

	got := Render(cat, st.Export(), "en")
	if got != "(navy blouse:1.3)" {
		t.Errorf("Render() = %q, want %q", got, "(navy blouse:1.3)")
	}
}

func TestRenderFullBodyOutfitHidesBodywear(t *testing.T) {
	cat, st := fixture(t)

	// An outfit with manually re-enabled bodywear underneath: the outfit
	// wins while the mode is on.
	if err := st.SetEnabled("full_body", true); err != nil {
		t.Fatal(err)
	}
	set(t, st, "full_body", "kimono")
	set(t, st, "lower_body", "shorts")
	set(t, st, "upper_body", "blouse")

	snap := st.Export()
	snap.FullBodyMode = true
	if got := Render(cat, snap, "en"); got != "kimono" {
		t.Errorf("Render() = %q, want only the outfit", got)
	}

	// Mode off: everything renders again.
	snap.FullBodyMode = false
	got := Render(cat, snap, "en")
	want := "kimono, blouse, shorts"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderFullBodyModeWithoutOutfitValue(t *testing.T) {
	cat, st := fixture(t)

	set(t, st, "lower_body", "shorts")
	snap := st.Export()
	snap.FullBodyMode = true
	// No outfit selected, so the mode does not hide anything extra.
	if got := Render(cat, snap, "en"); got != "shorts" {
		t.Errorf("Render() = %q, want %q", got, "shorts")
	}
}

func TestRenderSubjectTag(t *testing.T) {
	cat, st := fixture(t)
	g := st.Global()
	g.SubjectTag = "1girl"
	st.SetGlobal(g)

	set(t, st, "hair_color", "blonde_hair")

	got := Render(cat, st.Export(), "en")
	if got != "1girl, blonde hair" {
		t.Errorf("Render() = %q, want subject tag first", got)
	}
}

func TestRenderChineseLocale(t *testing.T) {
	cat, st := fixture(t)

	set(t, st, "hair_color", "blonde_hair")
	set(t, st, "upper_body", "blouse")
	if err := st.SetColor("upper_body", "red"); err != nil {
		t.Fatal(err)
	}

	got := Render(cat, st.Export(), "zh")
	if !strings.Contains(got, "金发") {
		t.Errorf("Render(zh) = %q, want Chinese hair label", got)
	}
	if !strings.Contains(got, "红色 女式衬衫") {
		t.Errorf("Render(zh) = %q, want localized color prefix", got)
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		generated string
		want      string
	}{
		{"both empty", "", "", ""},
		{"empty prefix", "", "red hair", "red hair"},
		{"empty generated", "masterpiece", "", "masterpiece"},
		{"comma space suffix joins once", "masterpiece, ", "red hair", "masterpiece, red hair"},
		{"bare comma gets space", "masterpiece,", "red hair", "masterpiece, red hair"},
		{"trailing space trimmed", "masterpiece ", "red hair", "masterpiece, red hair"},
		{"no suffix gets separator", "masterpiece", "red hair", "masterpiece, red hair"},
		{"whitespace-only prefix ignored", "   ", "red hair", "red hair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.prefix, tt.generated); got != tt.want {
				t.Errorf("Combine(%q, %q) = %q, want %q",
					tt.prefix, tt.generated, got, tt.want)
			}
		})
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantText   string
		wantWeight float64
	}{
		{"plain tag", "red hair", "red hair", 1.0},
		{"weighted tag", "(smile:1.5)", "smile", 1.5},
		{"weight clamps high", "(smile:9.0)", "smile", 2.0},
		{"weight clamps low", "(smile:0.01)", "smile", 0.1},
		{"malformed weight keeps raw", "(smile:abc)", "(smile:abc)", 1.0},
		{"no colon keeps raw", "(smile)", "(smile)", 1.0},
		{"padded", "  smile  ", "smile", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, weight := ParseToken(tt.raw)
			if text != tt.wantText || weight != tt.wantWeight {
				t.Errorf("ParseToken(%q) = (%q, %v), want (%q, %v)",
					tt.raw, text, weight, tt.wantText, tt.wantWeight)
			}
		})
	}
}

func TestIndexLookup(t *testing.T) {
	cat, _ := fixture(t)
	idx := NewIndex(cat)

	tests := []struct {
		name     string
		token    string
		wantSlot string
		wantOpt  string
		wantOK   bool
	}{
		{"english label", "ponytail", "hair_style", "ponytail", true},
		{"case insensitive", "Blonde Hair", "hair_color", "blonde_hair", true},
		{"underscore id form", "blonde_hair", "hair_color", "blonde_hair", true},
		{"chinese label", "马尾", "hair_style", "ponytail", true},
		{"unknown", "laser sword", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := idx.Lookup(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			}
			if ok && (m.Slot != tt.wantSlot || m.OptionID != tt.wantOpt) {
				t.Errorf("Lookup(%q) = %+v, want %s/%s", tt.token, m, tt.wantSlot, tt.wantOpt)
			}
		})
	}
}

func TestIndexSplitColor(t *testing.T) {
	cat, _ := fixture(t)
	idx := NewIndex(cat)

	color, rest, ok := idx.SplitColor("red blouse")
	if !ok || color != "red" || rest != "blouse" {
		t.Errorf("SplitColor(red blouse) = (%q, %q, %v)", color, rest, ok)
	}

	if _, _, ok := idx.SplitColor("blouse"); ok {
		t.Error("token without color prefix should not split")
	}
}
