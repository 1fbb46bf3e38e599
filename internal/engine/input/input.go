// Package input translates SDL2 events for the GL front-end.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/physview/internal/engine/ui2d"
	"github.com/Faultbox/physview/internal/panel"
)

// EventType classifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Chord  panel.Chord
	Width  int
	Height int
	MouseX float32
	MouseY float32
	DeltaX float32
	DeltaY float32
	Wheel  float32
	Button uint8
}

// Input collects the events of one frame and mirrors mouse and modifier
// state into a ui2d.InputState.
type Input struct {
	events []Event
	ui     *ui2d.InputState
}

// New creates an input handler feeding ui. ui may be nil.
func New(ui *ui2d.InputState) *Input {
	return &Input{
		events: make([]Event, 0, 16),
		ui:     ui,
	}
}

// Update polls SDL events. It returns true if the window should close.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			i.modifiers(e.Keysym.Mod)
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			i.events = append(i.events, Event{
				Type:  EventKeyDown,
				Chord: Chord(sdl.GetKeyName(e.Keysym.Sym), e.Keysym.Mod),
			})

		case *sdl.MouseMotionEvent:
			if i.ui != nil {
				i.ui.MouseX, i.ui.MouseY = float32(e.X), float32(e.Y)
			}
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: float32(e.X),
				MouseY: float32(e.Y),
				DeltaX: float32(e.XRel),
				DeltaY: float32(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			pressed := e.Type == sdl.MOUSEBUTTONDOWN
			i.button(e.Button, pressed)
			typ := EventMouseUp
			if pressed {
				typ = EventMouseDown
			}
			i.events = append(i.events, Event{
				Type:   typ,
				MouseX: float32(e.X),
				MouseY: float32(e.Y),
				Button: e.Button,
			})

		case *sdl.MouseWheelEvent:
			if i.ui != nil {
				i.ui.ScrollX += float32(e.X)
				i.ui.ScrollY += float32(e.Y)
			}
			i.events = append(i.events, Event{Type: EventWheel, Wheel: float32(e.Y)})
		}
	}

	return quit
}

func (i *Input) button(b uint8, pressed bool) {
	if i.ui == nil {
		return
	}
	switch b {
	case sdl.BUTTON_LEFT:
		i.ui.MouseLeftDown = pressed
	case sdl.BUTTON_RIGHT:
		i.ui.MouseRightDown = pressed
	case sdl.BUTTON_MIDDLE:
		i.ui.MouseMiddleDown = pressed
	}
}

func (i *Input) modifiers(mod uint16) {
	if i.ui == nil {
		return
	}
	i.ui.KeyCtrl = mod&uint16(sdl.KMOD_CTRL) != 0
	i.ui.KeyShift = mod&uint16(sdl.KMOD_SHIFT) != 0
	i.ui.KeyAlt = mod&uint16(sdl.KMOD_ALT) != 0
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Chord builds the panel chord for an SDL key name and modifier mask.
// The Command key counts as Ctrl so macOS bindings work.
func Chord(name string, mod uint16) panel.Chord {
	ctrl := mod&uint16(sdl.KMOD_CTRL|sdl.KMOD_GUI) != 0
	return panel.Chord{Key: name, Ctrl: ctrl}
}
