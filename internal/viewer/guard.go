package viewer

import (
	"strings"
	"sync/atomic"
)

// Input event types a client forwards to the guard.
const (
	EventKeyDown     = "keydown"
	EventContextMenu = "contextmenu"
	EventDragStart   = "dragstart"
)

// InputEvent is a raw UI event forwarded by the client.
type InputEvent struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
}

// Intent is what an input event means to the viewer.
type Intent int

const (
	IntentNone Intent = iota
	IntentPreviousPage
	IntentNextPage
	IntentZoomIn
	IntentZoomOut
	IntentToggleFullscreen
	IntentSuppress
)

var intentNames = [...]string{
	IntentNone:             "none",
	IntentPreviousPage:     "previous_page",
	IntentNextPage:         "next_page",
	IntentZoomIn:           "zoom_in",
	IntentZoomOut:          "zoom_out",
	IntentToggleFullscreen: "toggle_fullscreen",
	IntentSuppress:         "suppress",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "unknown"
	}
	return intentNames[i]
}

// Guard maps input events to viewer intents and flags save/print shortcuts,
// context menus and drags for suppression. It is attached for the lifetime of
// one session; once detached it classifies nothing.
//
// Suppression is a client-side deterrent only.
type Guard struct {
	attached atomic.Bool
}

// NewGuard returns an attached guard.
func NewGuard() *Guard {
	g := &Guard{}
	g.attached.Store(true)
	return g
}

// Detach stops the guard. It is safe to call more than once.
func (g *Guard) Detach() {
	g.attached.Store(false)
}

// Attached reports whether the guard is still active.
func (g *Guard) Attached() bool {
	return g.attached.Load()
}

// Classify returns the intent for ev.
func (g *Guard) Classify(ev InputEvent) (Intent, error) {
	if !g.Attached() {
		return IntentNone, ErrGuardDetached
	}

	switch ev.Type {
	case EventContextMenu, EventDragStart:
		return IntentSuppress, nil
	case EventKeyDown, "":
	default:
		return IntentNone, nil
	}

	if ev.Ctrl || ev.Meta {
		switch strings.ToLower(ev.Key) {
		case "s", "p":
			return IntentSuppress, nil
		}
		return IntentNone, nil
	}

	switch ev.Key {
	case "ArrowLeft", "ArrowUp":
		return IntentPreviousPage, nil
	case "ArrowRight", "ArrowDown":
		return IntentNextPage, nil
	case "+":
		return IntentZoomIn, nil
	case "-":
		return IntentZoomOut, nil
	case "f":
		return IntentToggleFullscreen, nil
	}
	return IntentNone, nil
}
