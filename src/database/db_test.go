package database

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"chargen/src/errors"
	"chargen/src/history"
	"chargen/src/store"
)

func memoryDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSnapshot(value string) store.Snapshot {
	return store.Snapshot{
		Slots: map[string]store.SlotState{
			"hair_color": {Value: value, Enabled: true, Weight: 1.0},
		},
		Global: store.GlobalConfig{SubjectTag: "1girl"},
	}
}

func TestPresetRoundtrip(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	if err := db.SavePreset("casual", testSnapshot("red_hair")); err != nil {
		t.Fatalf("SavePreset() failed: %v", err)
	}

	snap, err := db.LoadPreset("casual")
	if err != nil {
		t.Fatalf("LoadPreset() failed: %v", err)
	}
	if snap.Slots["hair_color"].Value != "red_hair" {
		t.Errorf("loaded value = %q, want red_hair", snap.Slots["hair_color"].Value)
	}
	if snap.Global.SubjectTag != "1girl" {
		t.Errorf("loaded subject tag = %q", snap.Global.SubjectTag)
	}
}

func TestPresetOverwrite(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	if err := db.SavePreset("look", testSnapshot("red_hair")); err != nil {
		t.Fatal(err)
	}
	if err := db.SavePreset("look", testSnapshot("black_hair")); err != nil {
		t.Fatalf("overwriting save failed: %v", err)
	}

	snap, err := db.LoadPreset("look")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Slots["hair_color"].Value != "black_hair" {
		t.Error("save with existing name should overwrite")
	}

	presets, err := db.ListPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 {
		t.Errorf("got %d presets, want 1", len(presets))
	}
}

func TestPresetNotFound(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	_, err := db.LoadPreset("ghost")
	if err == nil {
		t.Fatal("expected error for missing preset")
	}
	if !stderrors.Is(err, errors.ErrPresetNotFound) {
		t.Errorf("error = %v, want ErrPresetNotFound", err)
	}

	if err := db.DeletePreset("ghost"); !stderrors.Is(err, errors.ErrPresetNotFound) {
		t.Errorf("delete error = %v, want ErrPresetNotFound", err)
	}

	if err := db.SavePreset("", testSnapshot("x")); err == nil {
		t.Error("empty preset name should be rejected")
	}
}

func TestPresetDelete(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	if err := db.SavePreset("doomed", testSnapshot("red_hair")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeletePreset("doomed"); err != nil {
		t.Fatalf("DeletePreset() failed: %v", err)
	}
	if _, err := db.LoadPreset("doomed"); err == nil {
		t.Error("preset should be gone after delete")
	}
}

func TestHistoryPersistence(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	entries := []history.Entry{
		{ID: "b", Prompt: "second", Prefix: "pre, ", Snapshot: testSnapshot("black_hair"), CreatedAt: now},
		{ID: "a", Prompt: "first", Snapshot: testSnapshot("red_hair"), CreatedAt: now.Add(-time.Minute)},
	}

	if err := db.SaveHistory(entries); err != nil {
		t.Fatalf("SaveHistory() failed: %v", err)
	}

	loaded, err := db.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory() failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d entries, want 2", len(loaded))
	}
	if loaded[0].ID != "b" || loaded[1].ID != "a" {
		t.Errorf("entries not newest-first: %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if loaded[0].Prefix != "pre, " {
		t.Errorf("prefix lost: %q", loaded[0].Prefix)
	}
	if loaded[0].Snapshot.Slots["hair_color"].Value != "black_hair" {
		t.Error("snapshot lost in persistence roundtrip")
	}
}

func TestSaveHistoryReplaces(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	now := time.Now().UTC()
	first := []history.Entry{{ID: "old", Prompt: "old", Snapshot: testSnapshot("x"), CreatedAt: now}}
	if err := db.SaveHistory(first); err != nil {
		t.Fatal(err)
	}
	second := []history.Entry{{ID: "new", Prompt: "new", Snapshot: testSnapshot("y"), CreatedAt: now}}
	if err := db.SaveHistory(second); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].ID != "new" {
		t.Error("SaveHistory should replace previous contents")
	}
}

func TestLoadHistoryHonorsCap(t *testing.T) {
	t.Parallel()
	db := memoryDB(t)

	now := time.Now().UTC()
	var entries []history.Entry
	for i := 0; i < history.MaxEntries+5; i++ {
		entries = append(entries, history.Entry{
			ID:        fmt.Sprintf("id-%d", i),
			Prompt:    fmt.Sprintf("prompt %d", i),
			Snapshot:  testSnapshot("x"),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
	}
	if err := db.SaveHistory(entries); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != history.MaxEntries {
		t.Errorf("loaded %d entries, want cap %d", len(loaded), history.MaxEntries)
	}
}
