package window

import "fmt"

// Mode is the current presentation mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePostIt
	ModeCalendar
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModePostIt:
		return "post-it"
	case ModeCalendar:
		return "calendar"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// size is the fixed window size used while in m.
func (m Mode) size() Size {
	switch m {
	case ModePostIt:
		return PostItSize
	case ModeCalendar:
		return CalendarSize
	default:
		return NormalSize
	}
}

// Command is a mode toggle.
type Command int

const (
	CmdTogglePostIt Command = iota + 1
	CmdToggleCalendar
)

func (c Command) target() Mode {
	switch c {
	case CmdTogglePostIt:
		return ModePostIt
	case CmdToggleCalendar:
		return ModeCalendar
	default:
		return ModeNormal
	}
}

// State is the controller's in-memory state. Saved is nil while nothing
// is recorded.
type State struct {
	Mode    Mode
	Saved   *Geometry
	Opacity float64
}

// Observation is the live window state read before planning.
type Observation struct {
	Current Geometry
}

// EffectKind names one window call.
type EffectKind int

const (
	EffectUnmaximize EffectKind = iota + 1
	EffectMaximize
	EffectResize
	EffectAlwaysOnTop
	EffectAlpha
)

// Effect is one window call produced by Plan. Only the field matching Kind
// is meaningful.
type Effect struct {
	Kind    EffectKind
	Size    Size
	OnTop   bool
	Opacity float64
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectUnmaximize:
		return "unmaximize"
	case EffectMaximize:
		return "maximize"
	case EffectResize:
		return "resize to " + e.Size.String()
	case EffectAlwaysOnTop:
		return fmt.Sprintf("set always-on-top %t", e.OnTop)
	case EffectAlpha:
		return fmt.Sprintf("set opacity %.2f", e.Opacity)
	default:
		return fmt.Sprintf("effect(%d)", int(e.Kind))
	}
}

// Plan computes the state after cmd and the window calls that get there.
//
// From normal, the current geometry is recorded unless one is already saved,
// the window is unmaximized and resized to the mode size. Toggling the
// active mode restores the saved geometry (or NormalSize) and clears it.
// Toggling the other compact mode switches directly and keeps the saved
// geometry. Post-it forces always-on-top; nothing resets it. The current
// opacity is reapplied last on every path.
func Plan(s State, cmd Command, obs Observation) (State, []Effect) {
	target := cmd.target()
	if target == ModeNormal {
		return s, nil
	}

	next := s
	var effects []Effect
	if obs.Current.Maximized {
		effects = append(effects, Effect{Kind: EffectUnmaximize})
	}

	switch s.Mode {
	case ModeNormal:
		if next.Saved == nil {
			g := obs.Current
			next.Saved = &g
		}
		effects = append(effects, enter(target)...)
		next.Mode = target

	case target:
		if s.Saved != nil {
			effects = append(effects, Effect{Kind: EffectResize, Size: s.Saved.Size})
			if s.Saved.Maximized {
				effects = append(effects, Effect{Kind: EffectMaximize})
			}
		} else {
			effects = append(effects, Effect{Kind: EffectResize, Size: NormalSize})
		}
		next.Mode = ModeNormal
		next.Saved = nil

	default:
		effects = append(effects, enter(target)...)
		next.Mode = target
	}

	effects = append(effects, Effect{Kind: EffectAlpha, Opacity: s.Opacity})
	return next, effects
}

func enter(m Mode) []Effect {
	effects := []Effect{{Kind: EffectResize, Size: m.size()}}
	if m == ModePostIt {
		effects = append(effects, Effect{Kind: EffectAlwaysOnTop, OnTop: true})
	}
	return effects
}
