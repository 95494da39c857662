// Package prompt turns slot state into the comma-separated tag string
// image generators expect, and merges it with user-written prefixes.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"chargen/src/catalog"
	"chargen/src/store"
)

// weightEpsilon is the band around 1.0 inside which emphasis syntax is
// omitted; anything that would print as 1.0 renders as a plain tag.
const weightEpsilon = 0.05

// Fragments renders one tag per enabled, selected, non-suppressed slot in
// catalog order. Unknown option ids degrade silently to no fragment.
// While full-body mode is active with an outfit selected, the upper_body
// and lower_body slots are excluded even if re-enabled by hand.
func Fragments(cat *catalog.Catalog, snap store.Snapshot, locale string) []string {
	outfitWorn := false
	if snap.FullBodyMode {
		if fb, ok := snap.Slots["full_body"]; ok && fb.Enabled && fb.Value != "" {
			outfitWorn = true
		}
	}

	var out []string
	for _, name := range cat.Order() {
		if outfitWorn && (name == "upper_body" || name == "lower_body") {
			continue
		}
		st, ok := snap.Slots[name]
		if !ok || !st.Enabled || st.Suppressed || st.Value == "" {
			continue
		}
		label := cat.OptionLabel(name, st.Value, locale)
		if label == "" {
			continue
		}
		def, err := cat.Slot(name)
		if err == nil && def.HasColor && st.Color != "" {
			if cl := cat.ColorLabel(st.Color, locale); cl != "" {
				label = cl + " " + label
			}
		}
		out = append(out, applyWeight(label, st.Weight))
	}
	return out
}

// Render assembles the full generated prompt: subject tag first, then the
// slot fragments, joined with ", ".
func Render(cat *catalog.Catalog, snap store.Snapshot, locale string) string {
	frags := Fragments(cat, snap, locale)
	if tag := strings.TrimSpace(snap.Global.SubjectTag); tag != "" {
		frags = append([]string{tag}, frags...)
	}
	return strings.Join(frags, ", ")
}

func applyWeight(fragment string, weight float64) string {
	w := store.ClampWeight(weight)
	if math.Abs(w-store.DefaultWeight) <= weightEpsilon {
		return fragment
	}
	return fmt.Sprintf("(%s:%.1f)", fragment, w)
}

// Combine merges a user-written prefix with the generated prompt. Trailing
// spaces on the prefix are dropped first; a prefix ending in "," gets a
// single space before the generated text, anything else gets ", ". Either
// side empty returns the other unchanged.
func Combine(prefix, generated string) string {
	if strings.TrimSpace(prefix) == "" {
		return generated
	}
	if generated == "" {
		return prefix
	}
	trimmed := strings.TrimRight(prefix, " ")
	if strings.HasSuffix(trimmed, ",") {
		return trimmed + " " + generated
	}
	return trimmed + ", " + generated
}
