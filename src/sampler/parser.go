package sampler

import (
	"strings"

	"chargen/src/catalog"
	"chargen/src/errors"
	"chargen/src/prompt"
	"chargen/src/store"
)

// ParsedSlot is one slot recovered from a prompt string.
type ParsedSlot struct {
	OptionID   string  `json:"option_id"`
	Color      string  `json:"color,omitempty"`
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
}

// ParseResult reports how much of a prompt string mapped back onto slots.
type ParseResult struct {
	Slots        map[string]ParsedSlot `json:"slots"`
	Unmatched    []string              `json:"unmatched,omitempty"`
	MatchedCount int                   `json:"matched_count"`
	TotalTokens  int                   `json:"total_tokens"`
	Confidence   float64               `json:"confidence"`
}

// Parser maps prompt tags back to catalog options.
type Parser struct {
	cat *catalog.Catalog
	idx *prompt.Index
}

// NewParser builds a parser over the catalog's reverse label index.
func NewParser(cat *catalog.Catalog) *Parser {
	return &Parser{cat: cat, idx: prompt.NewIndex(cat)}
}

// Parse splits a comma-separated prompt and resolves each tag to a slot
// option. Subject tags matching the configured subject are consumed without
// counting against confidence. A tag that fails a direct lookup is retried
// with a leading color word stripped; such matches carry reduced
// per-slot confidence. When two tags hit the same slot the first wins.
func (p *Parser) Parse(raw, subjectTag string) (ParseResult, error) {
	res := ParseResult{Slots: make(map[string]ParsedSlot)}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return res, errors.WrapWithContext(errors.ErrParseFailed, "empty prompt")
	}
	for _, piece := range strings.Split(raw, ",") {
		token := strings.TrimSpace(piece)
		if token == "" {
			continue
		}
		if subjectTag != "" && strings.EqualFold(token, subjectTag) {
			continue
		}
		res.TotalTokens++

		text, weight := prompt.ParseToken(token)
		if m, ok := p.idx.Lookup(text); ok {
			p.record(&res, m, "", weight, 1.0)
			continue
		}
		if color, rest, ok := p.idx.SplitColor(text); ok {
			if m, found := p.idx.Lookup(rest); found {
				p.record(&res, m, color, weight, 0.9)
				continue
			}
		}
		res.Unmatched = append(res.Unmatched, token)
	}
	if res.TotalTokens > 0 {
		res.Confidence = float64(res.MatchedCount) / float64(res.TotalTokens)
	}
	if res.MatchedCount == 0 {
		return res, errors.WrapWithContext(errors.ErrParseFailed, "no recognizable tags")
	}
	return res, nil
}

func (p *Parser) record(res *ParseResult, m prompt.Match, color string, weight, confidence float64) {
	res.MatchedCount++
	if _, exists := res.Slots[m.Slot]; exists {
		return
	}
	if color != "" {
		if def, err := p.cat.Slot(m.Slot); err != nil || !def.HasColor {
			color = ""
		}
	}
	res.Slots[m.Slot] = ParsedSlot{
		OptionID:   m.OptionID,
		Color:      color,
		Weight:     store.ClampWeight(weight),
		Confidence: confidence,
	}
}

// Apply writes a parse result into the store: matched slots get their
// value, color, and weight, and are enabled so the result renders. Locked
// slots are left untouched.
func (p *Parser) Apply(st *store.Store, res ParseResult) error {
	for name, ps := range res.Slots {
		state, err := st.Slot(name)
		if err != nil {
			return err
		}
		if state.Locked {
			continue
		}
		if err := st.SetValue(name, ps.OptionID); err != nil {
			return err
		}
		if ps.Color != "" {
			if err := st.SetColor(name, ps.Color); err != nil {
				return err
			}
		}
		if err := st.SetWeight(name, ps.Weight); err != nil {
			return err
		}
		if err := st.SetEnabled(name, true); err != nil {
			return err
		}
	}
	return nil
}
