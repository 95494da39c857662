package daemon

import (
	"encoding/json"
	"testing"

	"chargen/src/catalog"
	"chargen/src/config"
	"chargen/src/database"
	"chargen/src/session"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	settings := &config.Settings{
		Prompt: config.PromptConfig{
			UILocale:     "en",
			PromptLocale: "en",
			SubjectTag:   "1girl",
		},
		Palette: config.PaletteConfig{Enabled: true},
		Daemon:  config.DaemonConfig{DebounceMS: 20},
	}
	sess := session.New(cat, settings)
	t.Cleanup(sess.Close)

	return &Server{
		cat:   cat,
		sess:  sess,
		db:    db,
		stats: make(map[string]interface{}),
	}
}

func call(t *testing.T, s *Server, method string, params interface{}) interface{} {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			t.Fatal(err)
		}
		raw = data
	}
	result, err := s.routeMethod(method, raw)
	if err != nil {
		t.Fatalf("%s failed: %v", method, err)
	}
	return result
}

func TestRouteUnknownMethod(t *testing.T) {
	s := testServer(t)

	_, err := s.routeMethod("nonexistent.method", nil)
	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("error = %v, want *RPCError", err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("code = %d, want -32601", rpcErr.Code)
	}
}

func TestCatalogGet(t *testing.T) {
	s := testServer(t)

	result := call(t, s, "catalog.get", map[string]string{"locale": "en"})
	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type %T", result)
	}
	order, ok := m["order"].([]string)
	if !ok || len(order) != 31 {
		t.Errorf("order = %v", m["order"])
	}
}

func TestSlotSetAndGenerate(t *testing.T) {
	s := testServer(t)

	call(t, s, "slots.set", map[string]string{"slot": "hair_color", "value": "red_hair"})

	result := call(t, s, "prompt.generate", nil)
	m := result.(map[string]interface{})
	if m["prompt"] != "1girl, red hair" {
		t.Errorf("prompt = %v", m["prompt"])
	}
	if m["added"] != true {
		t.Error("first generate should commit")
	}

	// History was persisted alongside the commit.
	entries, err := s.db.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("persisted %d entries, want 1", len(entries))
	}
}

func TestSlotSetValidation(t *testing.T) {
	s := testServer(t)

	if _, err := s.routeMethod("slots.set", json.RawMessage(`{"slot":"","value":"x"}`)); err == nil {
		t.Error("missing slot should be rejected")
	}
	if _, err := s.routeMethod("slots.set", json.RawMessage(`{"slot":"hair_color","value":"nope"}`)); err == nil {
		t.Error("unknown option should be rejected")
	}
}

func TestConfigsRoundtrip(t *testing.T) {
	s := testServer(t)

	call(t, s, "slots.set", map[string]string{"slot": "hair_color", "value": "red_hair"})
	call(t, s, "configs.save", map[string]string{"name": "mylook"})

	call(t, s, "state.reset", nil)
	if st, _ := s.sess.Slot("hair_color"); st.Value != "" {
		t.Fatal("reset did not clear state")
	}

	call(t, s, "configs.load", map[string]string{"name": "mylook"})
	if st, _ := s.sess.Slot("hair_color"); st.Value != "red_hair" {
		t.Error("loading the preset should restore the selection")
	}

	result := call(t, s, "configs.list", nil)
	m := result.(map[string]interface{})
	presets := m["presets"].([]database.PresetInfo)
	if len(presets) != 1 || presets[0].Name != "mylook" {
		t.Errorf("presets = %v", presets)
	}
}

func TestHistoryImportErrors(t *testing.T) {
	s := testServer(t)

	_, err := s.routeMethod("history.import",
		json.RawMessage(`{"data": {"version": 99, "entries": []}}`))
	if err == nil {
		t.Error("future version should be rejected")
	}

	_, err = s.routeMethod("history.import", json.RawMessage(`{}`))
	if err == nil {
		t.Error("missing data should be rejected")
	}
}

func TestModeToggleOverRPC(t *testing.T) {
	s := testServer(t)

	result := call(t, s, "modes.fullBody", nil)
	if result.(map[string]interface{})["active"] != true {
		t.Error("first toggle should activate the mode")
	}
	result = call(t, s, "modes.fullBody", nil)
	if result.(map[string]interface{})["active"] != false {
		t.Error("second toggle should deactivate the mode")
	}
}

func TestPaletteLockOverRPC(t *testing.T) {
	s := testServer(t)

	call(t, s, "palette.lock", map[string]bool{"locked": true})
	if _, err := s.routeMethod("palette.apply", json.RawMessage(`{"id":"marine"}`)); err == nil {
		t.Error("palette apply should fail while locked")
	}

	call(t, s, "palette.lock", map[string]bool{"locked": false})
	call(t, s, "palette.apply", map[string]string{"id": "marine"})
}

func TestStatusGet(t *testing.T) {
	s := testServer(t)

	result := call(t, s, "status.get", nil)
	m := result.(map[string]interface{})
	if m["slots"] != 31 {
		t.Errorf("slots = %v, want 31", m["slots"])
	}
}
