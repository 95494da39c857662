// Package session ties the store, constraint engine, sampler, and history
// log into one serialized interactive session. Every mutation re-evaluates
// constraints atomically and schedules a debounced preview render; explicit
// generates bypass the debounce and commit to history.
package session

import (
	"sync"
	"time"

	"chargen/src/catalog"
	"chargen/src/config"
	"chargen/src/constraint"
	"chargen/src/history"
	"chargen/src/prompt"
	"chargen/src/sampler"
	"chargen/src/store"
)

// PreviewFunc receives debounced preview renders. The sequence number is
// monotonic per session; receivers should drop anything older than the
// newest sequence they have seen.
type PreviewFunc func(seq uint64, rendered string)

// Session serializes all state access for one interactive client.
type Session struct {
	mu     sync.Mutex
	cat    *catalog.Catalog
	st     *store.Store
	eng    *constraint.Engine
	smp    *sampler.Sampler
	parser *sampler.Parser
	log    *history.Log

	debounce   time.Duration
	timer      *time.Timer
	pendingSeq uint64
	onPreview  PreviewFunc
}

// New builds a session from a catalog and daemon settings.
func New(cat *catalog.Catalog, settings *config.Settings) *Session {
	st := store.New(cat)
	g := st.Global()
	if settings != nil {
		g.SubjectTag = settings.Prompt.SubjectTag
		g.Prefix = settings.Prompt.Prefix
		g.UILocale = settings.Prompt.UILocale
		g.PromptLocale = settings.Prompt.PromptLocale
		g.PaletteEnabled = settings.Palette.Enabled
		g.PaletteID = settings.Palette.DefaultID
		st.SetGlobal(g)
	}
	s := &Session{
		cat:      cat,
		st:       st,
		smp:      sampler.New(cat),
		parser:   sampler.NewParser(cat),
		log:      history.NewLog(),
		debounce: 150 * time.Millisecond,
	}
	if settings != nil {
		s.debounce = settings.Daemon.Debounce()
	}
	s.eng = constraint.New(st)
	return s
}

// OnPreview registers the debounced preview receiver.
func (s *Session) OnPreview(fn PreviewFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPreview = fn
}

// Close cancels any pending debounced render.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
}

// cancelPendingLocked stops the debounce timer and invalidates the pending
// sequence so an already-fired callback discards itself as stale.
func (s *Session) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pendingSeq++
}

// schedulePreviewLocked arms the debounce timer. Each call supersedes the
// previous pending render.
func (s *Session) schedulePreviewLocked() {
	if s.onPreview == nil {
		return
	}
	s.cancelPendingLocked()
	seq := s.pendingSeq
	s.timer = time.AfterFunc(s.debounce, func() {
		s.firePreview(seq)
	})
}

func (s *Session) firePreview(seq uint64) {
	s.mu.Lock()
	if seq != s.pendingSeq || s.onPreview == nil {
		s.mu.Unlock()
		return
	}
	rendered := s.renderLocked()
	fn := s.onPreview
	s.mu.Unlock()
	fn(seq, rendered)
}

func (s *Session) renderLocked() string {
	snap := s.snapshotLocked()
	generated := prompt.Render(s.cat, snap, snap.Global.PromptLocale)
	return prompt.Combine(snap.Global.Prefix, generated)
}

// mutate runs fn under the lock, re-evaluates constraints, and schedules a
// preview when the mutation succeeded.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	s.eng.Reevaluate()
	s.schedulePreviewLocked()
	return nil
}

// SetValue selects an option for a slot.
func (s *Session) SetValue(slot, optionID string) error {
	return s.mutate(func() error { return s.st.SetValue(slot, optionID) })
}

// SetEnabled flips a slot on or off.
func (s *Session) SetEnabled(slot string, enabled bool) error {
	return s.mutate(func() error { return s.st.SetEnabled(slot, enabled) })
}

// ToggleSlot inverts a slot's enabled flag.
func (s *Session) ToggleSlot(slot string) (enabled bool, err error) {
	err = s.mutate(func() error {
		enabled, err = s.st.ToggleSlot(slot)
		return err
	})
	return enabled, err
}

// SetLocked marks a slot as held across randomization.
func (s *Session) SetLocked(slot string, locked bool) error {
	return s.mutate(func() error { return s.st.SetLocked(slot, locked) })
}

// SetColor assigns a color token to a color-capable slot.
func (s *Session) SetColor(slot, color string) error {
	return s.mutate(func() error { return s.st.SetColor(slot, color) })
}

// SetWeight sets a slot's emphasis weight.
func (s *Session) SetWeight(slot string, weight float64) error {
	return s.mutate(func() error { return s.st.SetWeight(slot, weight) })
}

// SetPrefix updates the free-text prompt prefix.
func (s *Session) SetPrefix(prefix string) error {
	return s.mutate(func() error { s.st.SetPrefix(prefix); return nil })
}

// SetSubjectTag updates the leading subject token.
func (s *Session) SetSubjectTag(tag string) error {
	return s.mutate(func() error { s.st.SetSubjectTag(tag); return nil })
}

// SetLocales updates the UI and prompt locales.
func (s *Session) SetLocales(ui, promptLocale string) error {
	return s.mutate(func() error {
		g := s.st.Global()
		g.UILocale = ui
		g.PromptLocale = promptLocale
		s.st.SetGlobal(g)
		return nil
	})
}

// ToggleGroup flips a group's disabled flag for a slot.
func (s *Session) ToggleGroup(slot, group string) error {
	return s.mutate(func() error { return s.st.ToggleGroup(slot, group) })
}

// SoloGroup solos a group on a slot, or un-solos if already active.
func (s *Session) SoloGroup(slot, group string) error {
	return s.mutate(func() error { return s.st.SoloGroup(slot, group) })
}

// ToggleFullBody enters or exits full-body outfit mode.
func (s *Session) ToggleFullBody() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.eng.ToggleFullBody()
	s.schedulePreviewLocked()
	return active
}

// ToggleUpperBody enters or exits upper-body shot mode.
func (s *Session) ToggleUpperBody() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.eng.ToggleUpperBody()
	s.schedulePreviewLocked()
	return active
}

// FullBodyActive reports full-body mode state.
func (s *Session) FullBodyActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.FullBodyActive()
}

// UpperBodyActive reports upper-body mode state.
func (s *Session) UpperBodyActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.UpperBodyActive()
}

// RandomizeSlot draws a fresh option for one slot.
func (s *Session) RandomizeSlot(slot string) error {
	return s.mutate(func() error { return s.smp.RandomizeSlot(s.st, slot) })
}

// RandomizeAll draws options for every eligible slot.
func (s *Session) RandomizeAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.smp.RandomizeAll(s.st, s.eng); err != nil {
		return err
	}
	s.schedulePreviewLocked()
	return nil
}

// ApplyPalette activates a palette and recolors current selections.
func (s *Session) ApplyPalette(paletteID string) error {
	return s.mutate(func() error { return s.smp.ApplyPalette(s.st, paletteID) })
}

// SetPaletteLocked freezes or unfreezes color assignments.
func (s *Session) SetPaletteLocked(locked bool) error {
	return s.mutate(func() error { s.st.SetPaletteLocked(locked); return nil })
}

// Preview renders the current state immediately, without touching history
// or the debounce timer.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

// Generate is the explicit action: it cancels any pending preview, renders
// the current state, and commits the result to history. Identical
// back-to-back generates yield one history entry.
func (s *Session) Generate() (string, history.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
	snap := s.snapshotLocked()
	generated := prompt.Render(s.cat, snap, snap.Global.PromptLocale)
	combined := prompt.Combine(snap.Global.Prefix, generated)
	entry, added := s.log.Add(combined, snap.Global.Prefix, snap)
	return combined, entry, added
}

// snapshotLocked exports the store state stamped with the live mode flags.
func (s *Session) snapshotLocked() store.Snapshot {
	snap := s.st.Export()
	snap.FullBodyMode = s.eng.FullBodyActive()
	snap.UpperBodyMode = s.eng.UpperBodyActive()
	return snap
}

// ParsePrompt resolves an existing prompt string against the catalog
// without changing state.
func (s *Session) ParsePrompt(raw string) (sampler.ParseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Parse(raw, s.st.Global().SubjectTag)
}

// ImportPrompt parses a prompt string and applies the matches to the store.
func (s *Session) ImportPrompt(raw string) (sampler.ParseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.parser.Parse(raw, s.st.Global().SubjectTag)
	if err != nil {
		return res, err
	}
	if err := s.parser.Apply(s.st, res); err != nil {
		return res, err
	}
	s.eng.Reevaluate()
	s.schedulePreviewLocked()
	return res, nil
}

// Snapshot exports the current state.
func (s *Session) Snapshot() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ApplySnapshot replaces state from a snapshot, dropping mode state.
func (s *Session) ApplySnapshot(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Apply(snap)
	s.eng.Reset()
	s.schedulePreviewLocked()
}

// ReloadCatalog swaps in a freshly loaded catalog, rebuilding the store,
// sampler, parser, and constraint engine around it while carrying the
// current selections over. Mode state is dropped like on any other bulk
// state replacement; selections referencing options the new catalog no
// longer has keep rendering nothing until changed.
func (s *Session) ReloadCatalog(cat *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.st.Export()
	s.cat = cat
	s.st = store.New(cat)
	s.st.Apply(snap)
	s.smp = sampler.New(cat)
	s.parser = sampler.NewParser(cat)
	s.eng = constraint.New(s.st)
	s.schedulePreviewLocked()
}

// Reset restores factory defaults.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Reset()
	s.eng.Reset()
	s.schedulePreviewLocked()
}

// Slot returns a copy of one slot's state.
func (s *Session) Slot(name string) (store.SlotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Slot(name)
}

// Global returns a copy of the global configuration.
func (s *Session) Global() store.GlobalConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Global()
}

// History returns the log contents, newest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// RestoreHistory replaces current state from a logged entry. Restoring
// does not create a new entry.
func (s *Session) RestoreHistory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.log.Get(id)
	if err != nil {
		return err
	}
	s.st.Apply(entry.Snapshot)
	s.eng.Reset()
	s.schedulePreviewLocked()
	return nil
}

// RemoveHistory deletes one entry.
func (s *Session) RemoveHistory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Remove(id)
}

// ClearHistory empties the log.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Clear()
}

// ExportHistory serializes the log together with the current locales and
// palette selection.
func (s *Session) ExportHistory() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.st.Global()
	return s.log.Export(&history.Settings{
		UILocale:       g.UILocale,
		PromptLocale:   g.PromptLocale,
		PaletteEnabled: g.PaletteEnabled,
		PaletteID:      g.PaletteID,
	})
}

// ImportHistory replaces the log from an exported envelope. When the
// envelope carries a settings block, the session adopts those locales and
// palette selection.
func (s *Session) ImportHistory(data []byte) (imported, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	imported, skipped, settings, err := s.log.Import(data)
	if err != nil {
		return imported, skipped, err
	}
	if settings != nil {
		g := s.st.Global()
		if settings.UILocale != "" {
			g.UILocale = settings.UILocale
		}
		if settings.PromptLocale != "" {
			g.PromptLocale = settings.PromptLocale
		}
		g.PaletteEnabled = settings.PaletteEnabled
		g.PaletteID = settings.PaletteID
		s.st.SetGlobal(g)
		s.schedulePreviewLocked()
	}
	return imported, skipped, nil
}
