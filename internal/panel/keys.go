package panel

// Key names shared by the front-ends. Letter keys use their upper-case
// letter.
const (
	KeyF1        = "F1"
	KeySpace     = "Space"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
)

// Chord is a key with an optional Ctrl modifier.
type Chord struct {
	Key  string
	Ctrl bool
}

func (c Chord) String() string {
	if c.Ctrl {
		return "Ctrl+" + c.Key
	}
	return c.Key
}

// Action is a named command bound to a chord.
type Action struct {
	Name  string
	Chord Chord
	Run   func() error
}

// KeyTable maps chords to actions. Registration order is kept so the
// table also drives the help overlay.
type KeyTable struct {
	actions []Action
	onError func(Action, error)
}

// Register binds name to chord. A later registration of the same chord
// replaces the earlier action in place.
func (t *KeyTable) Register(name string, chord Chord, run func() error) {
	for i, a := range t.actions {
		if a.Chord == chord {
			t.actions[i] = Action{Name: name, Chord: chord, Run: run}
			return
		}
	}
	t.actions = append(t.actions, Action{Name: name, Chord: chord, Run: run})
}

// Dispatch runs the action bound to chord and reports whether the chord
// is bound. A bound chord counts as handled even when its action fails.
func (t *KeyTable) Dispatch(chord Chord) bool {
	for _, a := range t.actions {
		if a.Chord != chord {
			continue
		}
		if err := a.Run(); err != nil && t.onError != nil {
			t.onError(a, err)
		}
		return true
	}
	return false
}

// Actions returns the bound actions in registration order.
func (t *KeyTable) Actions() []Action {
	return t.actions
}

// HelpRow is one line of the help overlay.
type HelpRow struct {
	Keys   string
	Action string
}

// HelpRows lists the bindings for the help overlay.
func (t *KeyTable) HelpRows() []HelpRow {
	rows := make([]HelpRow, len(t.actions))
	for i, a := range t.actions {
		rows[i] = HelpRow{Keys: a.Chord.String(), Action: a.Name}
	}
	return rows
}
