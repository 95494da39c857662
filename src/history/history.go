// Package history keeps the in-session log of committed prompts, with a
// versioned JSON export format for backup and transfer.
package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"chargen/src/errors"
	"chargen/src/store"
)

// MaxEntries caps the log; the oldest entries fall off the end.
const MaxEntries = 50

// envelopeVersion is the export format version this build reads and writes.
const envelopeVersion = 1

// Entry is one committed prompt with the state that produced it.
type Entry struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Prompt    string         `json:"prompt"`
	Prefix    string         `json:"prefix,omitempty"`
	Snapshot  store.Snapshot `json:"snapshot"`
}

// Settings carries the global configuration alongside an exported log so a
// transfer lands with the same locales and palette selection it was made
// under. Older envelopes without the block still import.
type Settings struct {
	UILocale       string `json:"ui_locale,omitempty"`
	PromptLocale   string `json:"prompt_locale,omitempty"`
	PaletteEnabled bool   `json:"palette_enabled,omitempty"`
	PaletteID      string `json:"palette_id,omitempty"`
}

type envelope struct {
	Version  int       `json:"version"`
	Settings *Settings `json:"settings,omitempty"`
	Entries  []Entry   `json:"entries"`
}

// Log holds entries newest-first. Not safe for concurrent use; the session
// layer serializes access.
type Log struct {
	entries []Entry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Add records a committed prompt at the head of the log. A commit identical
// to the current head in both prompt and prefix is dropped, so repeated
// generates without state changes produce one entry. Returns the entry and
// whether it was actually added.
func (l *Log) Add(prompt, prefix string, snap store.Snapshot) (Entry, bool) {
	if len(l.entries) > 0 {
		head := l.entries[0]
		if head.Prompt == prompt && head.Prefix == prefix {
			return head, false
		}
	}
	e := Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Prompt:    prompt,
		Prefix:    prefix,
		Snapshot:  snap,
	}
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	return e, true
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Get looks up an entry by id.
func (l *Log) Get(id string) (Entry, error) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, errors.WrapWithContext(errors.ErrInvalidInput, "history entry %q", id)
}

// Remove deletes an entry by id.
func (l *Log) Remove(id string) error {
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return errors.WrapWithContext(errors.ErrInvalidInput, "history entry %q", id)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.entries = nil
}

// Export serializes the log into the versioned envelope. A nil settings
// block is omitted from the payload.
func (l *Log) Export(settings *Settings) ([]byte, error) {
	env := envelope{Version: envelopeVersion, Settings: settings, Entries: l.entries}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, errors.WrapWithContext(err, "export history")
	}
	return data, nil
}

// Import replaces the log with the contents of an exported envelope and
// returns the settings block when the payload carries one. A payload that
// is not valid JSON, or whose version this build does not read, fails whole
// with a reason-coded error and leaves the log untouched. Individually
// malformed entries are skipped rather than failing the import; the skipped
// count is returned alongside the number imported.
func (l *Log) Import(data []byte) (imported, skipped int, settings *Settings, err error) {
	var env envelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil {
		return 0, 0, nil, errors.NewImportError("invalid_data", 0)
	}
	if env.Version != envelopeVersion {
		return 0, 0, nil, errors.NewImportError("unsupported_version", env.Version)
	}
	var kept []Entry
	for _, e := range env.Entries {
		if !validEntry(e) {
			skipped++
			continue
		}
		kept = append(kept, e)
		if len(kept) == MaxEntries {
			break
		}
	}
	l.entries = kept
	return len(kept), skipped, env.Settings, nil
}

// validEntry rejects entries that cannot be listed or restored: an id is
// needed for lookup and removal, a prompt for display, and a slot map for
// restore.
func validEntry(e Entry) bool {
	return e.ID != "" && e.Prompt != "" && e.Snapshot.Slots != nil
}
