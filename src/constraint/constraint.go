// Package constraint keeps slot state consistent after each mutation:
// coverage rules suppress slots hidden by clothing choices, and the
// one-shot outfit modes temporarily disable the slot sets an outfit
// replaces.
package constraint

import (
	"chargen/src/store"
)

const slotFullBody = "full_body"

// fullBodyTargets are the slots a one-piece outfit replaces.
var fullBodyTargets = []string{"upper_body", "waist", "lower_body", "hands", "legs"}

// upperBodyTargets are the slots hidden when composing an upper-body shot.
var upperBodyTargets = []string{"waist", "lower_body", "full_body", "legs", "feet"}

// Engine re-evaluates constraints over a store. Not safe for concurrent
// use; the session layer serializes all access alongside the store.
type Engine struct {
	st *store.Store

	fullBodyActive bool
	fullBodySaved  map[string]bool

	upperBodyActive bool
	upperBodySaved  map[string]bool
}

// New builds an engine and runs an initial evaluation pass.
func New(st *store.Store) *Engine {
	e := &Engine{st: st}
	e.Reevaluate()
	return e
}

// Reevaluate recomputes coverage suppression from the current selections.
// Call after every mutation that can change a covering option or the
// enabled flag of a covering slot.
func (e *Engine) Reevaluate() {
	suppressed := make(map[string]bool)
	cat := e.st.Catalog()
	for _, rule := range cat.CoverageRules() {
		src, err := e.st.Slot(rule.Slot)
		if err != nil || !src.Enabled || src.Suppressed || src.Value == "" {
			continue
		}
		if rule.ByOption[src.Value] {
			suppressed[rule.Dependent] = true
		}
	}
	for _, name := range e.st.SlotNames() {
		_ = e.st.SetSuppressed(name, suppressed[name])
	}
}

// FullBodyActive reports whether full-body outfit mode is on.
func (e *Engine) FullBodyActive() bool {
	return e.fullBodyActive
}

// UpperBodyActive reports whether upper-body shot mode is on.
func (e *Engine) UpperBodyActive() bool {
	return e.upperBodyActive
}

// ToggleFullBody enters or exits full-body outfit mode and returns the new
// state. Entering records which target slots are enabled right now,
// disables them all, and force-enables the outfit slot. Exiting restores
// every target to its recorded flag unconditionally and disables the
// outfit slot again. The two modes are independent: each records and
// restores its own target set, so nested enter/exit pairs unwind cleanly.
func (e *Engine) ToggleFullBody() bool {
	if e.fullBodyActive {
		e.exitFullBody()
	} else {
		e.enterFullBody()
	}
	e.Reevaluate()
	return e.fullBodyActive
}

func (e *Engine) enterFullBody() {
	e.fullBodySaved = recordEnabled(e.st, fullBodyTargets)
	disableAll(e.st, fullBodyTargets)
	_ = e.st.SetEnabled(slotFullBody, true)
	e.fullBodyActive = true
}

func (e *Engine) exitFullBody() {
	restoreEnabled(e.st, e.fullBodySaved)
	_ = e.st.SetEnabled(slotFullBody, false)
	e.fullBodySaved = nil
	e.fullBodyActive = false
}

// ToggleUpperBody enters or exits upper-body shot mode and returns the new
// state. The mechanics mirror full-body mode over a different target set;
// no slot is force-enabled on entry.
func (e *Engine) ToggleUpperBody() bool {
	if e.upperBodyActive {
		e.exitUpperBody()
	} else {
		e.enterUpperBody()
	}
	e.Reevaluate()
	return e.upperBodyActive
}

func (e *Engine) enterUpperBody() {
	e.upperBodySaved = recordEnabled(e.st, upperBodyTargets)
	disableAll(e.st, upperBodyTargets)
	e.upperBodyActive = true
}

func (e *Engine) exitUpperBody() {
	restoreEnabled(e.st, e.upperBodySaved)
	e.upperBodySaved = nil
	e.upperBodyActive = false
}

// Reset drops all mode state without restoring anything. Used when the
// whole store is replaced, e.g. by a history restore or a preset load.
func (e *Engine) Reset() {
	e.fullBodyActive = false
	e.fullBodySaved = nil
	e.upperBodyActive = false
	e.upperBodySaved = nil
	e.Reevaluate()
}

func recordEnabled(st *store.Store, slots []string) map[string]bool {
	saved := make(map[string]bool, len(slots))
	for _, name := range slots {
		if s, err := st.Slot(name); err == nil {
			saved[name] = s.Enabled
		}
	}
	return saved
}

func disableAll(st *store.Store, slots []string) {
	st.SetEnabledAll(slots, false)
}

func restoreEnabled(st *store.Store, saved map[string]bool) {
	for name, enabled := range saved {
		_ = st.SetEnabled(name, enabled)
	}
}
