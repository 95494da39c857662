package prompt

import (
	"strconv"
	"strings"

	"chargen/src/catalog"
	"chargen/src/store"
)

// Match names the slot and option a parsed token resolved to.
type Match struct {
	Slot     string
	OptionID string
}

// Index is a reverse lookup from rendered tag text back to slot options,
// built across every label locale so mixed-language prompts still parse.
type Index struct {
	byLabel map[string]Match
	colors  map[string]string
}

// NewIndex builds the reverse lookup for a catalog. Earlier slots in the
// catalog order win when two options share a label.
func NewIndex(cat *catalog.Catalog) *Index {
	idx := &Index{
		byLabel: make(map[string]Match),
		colors:  make(map[string]string),
	}
	for _, name := range cat.Order() {
		def, err := cat.Slot(name)
		if err != nil {
			continue
		}
		for _, opt := range def.Options {
			idx.addLabel(opt.Name, name, opt.ID)
			idx.addLabel(opt.ID, name, opt.ID)
			for _, label := range opt.Labels {
				idx.addLabel(label, name, opt.ID)
			}
		}
	}
	for token, labels := range cat.ColorLabels() {
		idx.colors[normalizeToken(token)] = token
		for _, label := range labels {
			if _, ok := idx.colors[normalizeToken(label)]; !ok {
				idx.colors[normalizeToken(label)] = token
			}
		}
	}
	return idx
}

func (idx *Index) addLabel(label, slot, optionID string) {
	key := normalizeToken(label)
	if key == "" {
		return
	}
	if _, ok := idx.byLabel[key]; !ok {
		idx.byLabel[key] = Match{Slot: slot, OptionID: optionID}
	}
}

// Lookup resolves a tag's text to a slot option.
func (idx *Index) Lookup(token string) (Match, bool) {
	m, ok := idx.byLabel[normalizeToken(token)]
	return m, ok
}

// SplitColor strips a leading color word from a token, returning the
// canonical color token and the remainder. ok is false when the token does
// not start with a known color.
func (idx *Index) SplitColor(token string) (color, rest string, ok bool) {
	norm := normalizeToken(token)
	for labelKey, canonical := range idx.colors {
		if strings.HasPrefix(norm, labelKey+" ") {
			return canonical, strings.TrimSpace(norm[len(labelKey):]), true
		}
	}
	return "", token, false
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseToken unwraps the emphasis syntax "(text:1.2)" from a raw tag,
// returning the inner text and the clamped weight. Tags without emphasis
// return the neutral weight. Malformed emphasis returns the raw text
// untouched so the caller can still attempt a lookup.
func ParseToken(raw string) (string, float64) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "(") || !strings.HasSuffix(raw, ")") {
		return raw, store.DefaultWeight
	}
	inner := raw[1 : len(raw)-1]
	colon := strings.LastIndex(inner, ":")
	if colon < 0 {
		return raw, store.DefaultWeight
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(inner[colon+1:]), 64)
	if err != nil {
		return raw, store.DefaultWeight
	}
	return strings.TrimSpace(inner[:colon]), store.ClampWeight(w)
}
