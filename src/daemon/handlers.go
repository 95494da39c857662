package daemon

import (
	"encoding/json"
	"os"
	"time"

	"chargen/src/history"
	"chargen/src/i18n"
)

// routeMethod routes JSON-RPC methods to their handlers
func (s *Server) routeMethod(method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "catalog.get":
		return s.handleCatalogGet(params)
	case "palettes.get":
		return s.handlePalettesGet(params)
	case "state.get":
		return s.handleStateGet(params)
	case "state.reset":
		return s.handleStateReset(params)
	case "slots.set":
		return s.handleSlotSet(params)
	case "slots.toggle":
		return s.handleSlotToggle(params)
	case "slots.lock":
		return s.handleSlotLock(params)
	case "slots.color":
		return s.handleSlotColor(params)
	case "slots.weight":
		return s.handleSlotWeight(params)
	case "slots.randomize":
		return s.handleSlotRandomize(params)
	case "slots.randomizeAll":
		return s.handleRandomizeAll(params)
	case "groups.toggle":
		return s.handleGroupToggle(params)
	case "groups.solo":
		return s.handleGroupSolo(params)
	case "modes.fullBody":
		return s.handleFullBodyToggle(params)
	case "modes.upperBody":
		return s.handleUpperBodyToggle(params)
	case "prompt.preview":
		return s.handlePromptPreview(params)
	case "prompt.generate":
		return s.handlePromptGenerate(params)
	case "prompt.parse":
		return s.handlePromptParse(params)
	case "prompt.import":
		return s.handlePromptImport(params)
	case "prompt.prefix":
		return s.handlePromptPrefix(params)
	case "palette.apply":
		return s.handlePaletteApply(params)
	case "palette.lock":
		return s.handlePaletteLock(params)
	case "configs.save":
		return s.handleConfigSave(params)
	case "configs.load":
		return s.handleConfigLoad(params)
	case "configs.list":
		return s.handleConfigList(params)
	case "configs.delete":
		return s.handleConfigDelete(params)
	case "history.list":
		return s.handleHistoryList(params)
	case "history.restore":
		return s.handleHistoryRestore(params)
	case "history.remove":
		return s.handleHistoryRemove(params)
	case "history.clear":
		return s.handleHistoryClear(params)
	case "history.export":
		return s.handleHistoryExport(params)
	case "history.import":
		return s.handleHistoryImport(params)
	case "status.get":
		return s.handleStatusGet(params)
	default:
		return nil, &RPCError{Code: -32601, Message: "Method not found"}
	}
}

func invalidParams() error {
	return &RPCError{Code: -32602, Message: "Invalid params"}
}

// SlotParams covers slot-addressed operations
type SlotParams struct {
	Slot    string  `json:"slot"`
	Value   string  `json:"value,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
	Locked  bool    `json:"locked,omitempty"`
	Color   string  `json:"color,omitempty"`
	Weight  float64 `json:"weight,omitempty"`
	Group   string  `json:"group,omitempty"`
}

type localeParams struct {
	Locale string `json:"locale,omitempty"`
}

func (s *Server) handleCatalogGet(params json.RawMessage) (interface{}, error) {
	var p localeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams()
		}
	}
	locale := i18n.NormalizeLocale(p.Locale)

	type optionView struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Group string `json:"group,omitempty"`
	}
	type slotView struct {
		Name     string       `json:"name"`
		Category string       `json:"category"`
		HasColor bool         `json:"has_color"`
		Groups   []string     `json:"groups,omitempty"`
		Options  []optionView `json:"options"`
	}
	type sectionView struct {
		Key   string   `json:"key"`
		Label string   `json:"label"`
		Slots []string `json:"slots"`
	}

	var slots []slotView
	for _, name := range s.cat.Order() {
		def, err := s.cat.Slot(name)
		if err != nil {
			continue
		}
		sv := slotView{
			Name:     name,
			Category: def.Category,
			HasColor: def.HasColor,
			Groups:   def.Groups(),
		}
		for _, opt := range def.Options {
			sv.Options = append(sv.Options, optionView{
				ID:    opt.ID,
				Label: i18n.Localize(opt.Labels, locale, opt.Name),
				Group: opt.Group,
			})
		}
		slots = append(slots, sv)
	}

	var sections []sectionView
	for _, sec := range s.cat.Sections() {
		sections = append(sections, sectionView{
			Key:   sec.Key,
			Label: i18n.Localize(sec.Labels, locale, sec.Key),
			Slots: sec.Slots,
		})
	}

	return map[string]interface{}{
		"order":            s.cat.Order(),
		"default_disabled": s.cat.DefaultDisabled(),
		"slots":            slots,
		"sections":         sections,
	}, nil
}

func (s *Server) handlePalettesGet(params json.RawMessage) (interface{}, error) {
	var p localeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams()
		}
	}
	locale := i18n.NormalizeLocale(p.Locale)

	type paletteView struct {
		ID     string   `json:"id"`
		Label  string   `json:"label"`
		Colors []string `json:"colors"`
	}
	var palettes []paletteView
	for _, pal := range s.cat.Palettes() {
		palettes = append(palettes, paletteView{
			ID:     pal.ID,
			Label:  i18n.Localize(pal.Labels, locale, pal.Name),
			Colors: pal.Colors,
		})
	}

	colorLabels := make(map[string]string)
	for _, c := range s.cat.IndividualColors() {
		colorLabels[c] = s.cat.ColorLabel(c, locale)
	}

	return map[string]interface{}{
		"palettes":     palettes,
		"colors":       s.cat.IndividualColors(),
		"color_labels": colorLabels,
	}, nil
}

func (s *Server) handleStateGet(params json.RawMessage) (interface{}, error) {
	snap := s.sess.Snapshot()
	return map[string]interface{}{
		"slots":           snap.Slots,
		"disabled_groups": snap.DisabledGroups,
		"global":          snap.Global,
		"full_body_mode":  s.sess.FullBodyActive(),
		"upper_body_mode": s.sess.UpperBodyActive(),
	}, nil
}

func (s *Server) handleStateReset(params json.RawMessage) (interface{}, error) {
	s.sess.Reset()
	return map[string]interface{}{"status": "reset"}, nil
}

func (s *Server) handleSlotSet(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" {
		return nil, invalidParams()
	}
	if err := s.sess.SetValue(p.Slot, p.Value); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "set", "preview": s.sess.Preview()}, nil
}

func (s *Server) handleSlotToggle(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" {
		return nil, invalidParams()
	}
	if p.Enabled != nil {
		if err := s.sess.SetEnabled(p.Slot, *p.Enabled); err != nil {
			return nil, err
		}
		return map[string]interface{}{"enabled": *p.Enabled}, nil
	}
	enabled, err := s.sess.ToggleSlot(p.Slot)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"enabled": enabled}, nil
}

func (s *Server) handleSlotLock(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" {
		return nil, invalidParams()
	}
	if err := s.sess.SetLocked(p.Slot, p.Locked); err != nil {
		return nil, err
	}
	return map[string]interface{}{"locked": p.Locked}, nil
}

func (s *Server) handleSlotColor(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" {
		return nil, invalidParams()
	}
	if err := s.sess.SetColor(p.Slot, p.Color); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "set"}, nil
}

func (s *Server) handleSlotWeight(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" {
		return nil, invalidParams()
	}
	if err := s.sess.SetWeight(p.Slot, p.Weight); err != nil {
		return nil, err
	}
	state, err := s.sess.Slot(p.Slot)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"weight": state.Weight}, nil
}

func (s *Server) handleSlotRandomize(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" {
		return nil, invalidParams()
	}
	if err := s.sess.RandomizeSlot(p.Slot); err != nil {
		return nil, err
	}
	state, err := s.sess.Slot(p.Slot)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"value": state.Value, "color": state.Color}, nil
}

func (s *Server) handleRandomizeAll(params json.RawMessage) (interface{}, error) {
	if err := s.sess.RandomizeAll(); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "randomized", "preview": s.sess.Preview()}, nil
}

func (s *Server) handleGroupToggle(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" || p.Group == "" {
		return nil, invalidParams()
	}
	if err := s.sess.ToggleGroup(p.Slot, p.Group); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "toggled"}, nil
}

func (s *Server) handleGroupSolo(params json.RawMessage) (interface{}, error) {
	var p SlotParams
	if err := json.Unmarshal(params, &p); err != nil || p.Slot == "" || p.Group == "" {
		return nil, invalidParams()
	}
	if err := s.sess.SoloGroup(p.Slot, p.Group); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "soloed"}, nil
}

func (s *Server) handleFullBodyToggle(params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"active": s.sess.ToggleFullBody()}, nil
}

func (s *Server) handleUpperBodyToggle(params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"active": s.sess.ToggleUpperBody()}, nil
}

func (s *Server) handlePromptPreview(params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"prompt": s.sess.Preview()}, nil
}

func (s *Server) handlePromptGenerate(params json.RawMessage) (interface{}, error) {
	rendered, entry, added := s.sess.Generate()
	if added {
		if err := s.db.SaveHistory(s.sess.History()); err != nil {
			// Persistence is best-effort here; the in-memory log is intact
			// and flushed again at shutdown.
			s.noteStorageError(err)
		}
	}
	return map[string]interface{}{
		"prompt":   rendered,
		"entry_id": entry.ID,
		"added":    added,
	}, nil
}

type promptTextParams struct {
	Prompt string `json:"prompt"`
	Prefix string `json:"prefix"`
}

func (s *Server) handlePromptParse(params json.RawMessage) (interface{}, error) {
	var p promptTextParams
	if err := json.Unmarshal(params, &p); err != nil || p.Prompt == "" {
		return nil, invalidParams()
	}
	res, err := s.sess.ParsePrompt(p.Prompt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Server) handlePromptImport(params json.RawMessage) (interface{}, error) {
	var p promptTextParams
	if err := json.Unmarshal(params, &p); err != nil || p.Prompt == "" {
		return nil, invalidParams()
	}
	res, err := s.sess.ImportPrompt(p.Prompt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Server) handlePromptPrefix(params json.RawMessage) (interface{}, error) {
	var p promptTextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams()
	}
	if err := s.sess.SetPrefix(p.Prefix); err != nil {
		return nil, err
	}
	return map[string]interface{}{"preview": s.sess.Preview()}, nil
}

type paletteParams struct {
	ID     string `json:"id,omitempty"`
	Locked bool   `json:"locked,omitempty"`
}

func (s *Server) handlePaletteApply(params json.RawMessage) (interface{}, error) {
	var p paletteParams
	if err := json.Unmarshal(params, &p); err != nil || p.ID == "" {
		return nil, invalidParams()
	}
	if err := s.sess.ApplyPalette(p.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "applied", "preview": s.sess.Preview()}, nil
}

func (s *Server) handlePaletteLock(params json.RawMessage) (interface{}, error) {
	var p paletteParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams()
	}
	if err := s.sess.SetPaletteLocked(p.Locked); err != nil {
		return nil, err
	}
	return map[string]interface{}{"locked": p.Locked}, nil
}

type presetParams struct {
	Name string `json:"name"`
}

func (s *Server) handleConfigSave(params json.RawMessage) (interface{}, error) {
	var p presetParams
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, invalidParams()
	}
	if err := s.db.SavePreset(p.Name, s.sess.Snapshot()); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "saved"}, nil
}

func (s *Server) handleConfigLoad(params json.RawMessage) (interface{}, error) {
	var p presetParams
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, invalidParams()
	}
	snap, err := s.db.LoadPreset(p.Name)
	if err != nil {
		return nil, err
	}
	s.sess.ApplySnapshot(snap)
	return map[string]interface{}{"status": "loaded", "preview": s.sess.Preview()}, nil
}

func (s *Server) handleConfigList(params json.RawMessage) (interface{}, error) {
	presets, err := s.db.ListPresets()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"presets": presets}, nil
}

func (s *Server) handleConfigDelete(params json.RawMessage) (interface{}, error) {
	var p presetParams
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, invalidParams()
	}
	if err := s.db.DeletePreset(p.Name); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "deleted"}, nil
}

type historyParams struct {
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (s *Server) handleHistoryList(params json.RawMessage) (interface{}, error) {
	type entryView struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Prompt    string    `json:"prompt"`
		Prefix    string    `json:"prefix,omitempty"`
	}
	var out []entryView
	for _, e := range s.sess.History() {
		out = append(out, entryView{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			Prompt:    e.Prompt,
			Prefix:    e.Prefix,
		})
	}
	return map[string]interface{}{"entries": out}, nil
}

func (s *Server) handleHistoryRestore(params json.RawMessage) (interface{}, error) {
	var p historyParams
	if err := json.Unmarshal(params, &p); err != nil || p.ID == "" {
		return nil, invalidParams()
	}
	if err := s.sess.RestoreHistory(p.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "restored", "preview": s.sess.Preview()}, nil
}

func (s *Server) handleHistoryRemove(params json.RawMessage) (interface{}, error) {
	var p historyParams
	if err := json.Unmarshal(params, &p); err != nil || p.ID == "" {
		return nil, invalidParams()
	}
	if err := s.sess.RemoveHistory(p.ID); err != nil {
		return nil, err
	}
	s.persistHistory()
	return map[string]interface{}{"status": "removed"}, nil
}

func (s *Server) handleHistoryClear(params json.RawMessage) (interface{}, error) {
	s.sess.ClearHistory()
	s.persistHistory()
	return map[string]interface{}{"status": "cleared"}, nil
}

func (s *Server) handleHistoryExport(params json.RawMessage) (interface{}, error) {
	data, err := s.sess.ExportHistory()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (s *Server) handleHistoryImport(params json.RawMessage) (interface{}, error) {
	var p historyParams
	if err := json.Unmarshal(params, &p); err != nil || len(p.Data) == 0 {
		return nil, invalidParams()
	}
	imported, skipped, err := s.sess.ImportHistory(p.Data)
	if err != nil {
		return nil, err
	}
	s.persistHistory()
	return map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
	}, nil
}

func (s *Server) handleStatusGet(params json.RawMessage) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]interface{}{
		"pid":             os.Getpid(),
		"socket":          s.socketPath,
		"slots":           len(s.cat.Order()),
		"history_entries": len(s.sess.History()),
		"full_body_mode":  s.sess.FullBodyActive(),
		"upper_body_mode": s.sess.UpperBodyActive(),
	}
	for k, v := range s.stats {
		status[k] = v
	}
	return status, nil
}

func (s *Server) persistHistory() {
	if err := s.db.SaveHistory(s.sess.History()); err != nil {
		s.noteStorageError(err)
	}
}

func (s *Server) noteStorageError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats["last_storage_error"] = err.Error()
	s.stats["last_storage_error_at"] = time.Now().Unix()
}

// historyEnvelope wraps persisted entries in the export format so the
// session's import path validates them once on load.
func historyEnvelope(entries []history.Entry) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"version": 1,
		"entries": entries,
	})
}
