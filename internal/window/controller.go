package window

import (
	"sync"
)

// Controller owns the presentation mode, the saved normal geometry and the
// opacity of one window. Commands are serialized; the field locks are taken
// in the order mode, geometry, opacity and only around in-memory access.
type Controller struct {
	win   Window
	alpha Alpha

	cmdMu sync.Mutex

	modeMu sync.Mutex
	mode   Mode

	geomMu sync.Mutex
	saved  *Geometry

	opacityMu sync.Mutex
	opacity   float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithAlpha sets the opacity capability. A nil Alpha means NoAlpha.
func WithAlpha(a Alpha) Option {
	return func(c *Controller) {
		if a != nil {
			c.alpha = a
		}
	}
}

// WithOpacity sets the initial opacity without applying it.
func WithOpacity(v float64) Option {
	return func(c *Controller) {
		c.opacity = ClampOpacity(v)
	}
}

// NewController creates a controller in normal mode at full opacity.
func NewController(win Window, opts ...Option) *Controller {
	c := &Controller{
		win:     win,
		alpha:   NoAlpha{},
		mode:    ModeNormal,
		opacity: DefaultOpacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the current presentation mode.
func (c *Controller) Mode() Mode {
	c.modeMu.Lock()
	defer c.modeMu.Unlock()
	return c.mode
}

// PostIt reports whether post-it mode is active.
func (c *Controller) PostIt() bool {
	return c.Mode() == ModePostIt
}

// Calendar reports whether calendar mode is active.
func (c *Controller) Calendar() bool {
	return c.Mode() == ModeCalendar
}

// SavedGeometry returns the geometry that leaving the current mode restores.
func (c *Controller) SavedGeometry() (Geometry, bool) {
	c.geomMu.Lock()
	defer c.geomMu.Unlock()
	if c.saved == nil {
		return Geometry{}, false
	}
	return *c.saved, true
}

// Opacity returns the stored opacity.
func (c *Controller) Opacity() float64 {
	c.opacityMu.Lock()
	defer c.opacityMu.Unlock()
	return c.opacity
}

// TogglePostIt enters or leaves post-it mode and returns whether it is
// now active.
func (c *Controller) TogglePostIt() (bool, error) {
	next, err := c.run(CmdTogglePostIt)
	if err != nil {
		return false, err
	}
	return next.Mode == ModePostIt, nil
}

// ToggleCalendar enters or leaves calendar mode and returns whether it is
// now active.
func (c *Controller) ToggleCalendar() (bool, error) {
	next, err := c.run(CmdToggleCalendar)
	if err != nil {
		return false, err
	}
	return next.Mode == ModeCalendar, nil
}

// SetOpacity clamps v, applies it and stores it. The clamped value is
// returned even when applying fails, in which case nothing is stored.
func (c *Controller) SetOpacity(v float64) (float64, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	next := ClampOpacity(v)
	if err := c.alpha.SetAlpha(next); err != nil {
		return next, platformError("set opacity", err)
	}

	c.opacityMu.Lock()
	c.opacity = next
	c.opacityMu.Unlock()
	return next, nil
}

// IsAlwaysOnTop reads the window's always-on-top flag.
func (c *Controller) IsAlwaysOnTop() (bool, error) {
	on, err := c.win.IsAlwaysOnTop()
	if err != nil {
		return false, platformError("read always-on-top", err)
	}
	return on, nil
}

// ToggleAlwaysOnTop flips the always-on-top flag, reapplies the opacity and
// returns the new flag.
func (c *Controller) ToggleAlwaysOnTop() (bool, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	cur, err := c.win.IsAlwaysOnTop()
	if err != nil {
		return false, platformError("read always-on-top", err)
	}
	next := !cur
	if err := c.win.SetAlwaysOnTop(next); err != nil {
		return false, platformError("set always-on-top", err)
	}
	if err := c.alpha.SetAlpha(c.Opacity()); err != nil {
		return next, platformError("reapply opacity", err)
	}
	return next, nil
}

// ToggleMaximize maximizes or restores the window and returns whether it
// is now maximized. The presentation mode is not affected.
func (c *Controller) ToggleMaximize() (bool, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	maximized, err := c.win.IsMaximized()
	if err != nil {
		return false, platformError("read window state", err)
	}
	if maximized {
		if err := c.win.Unmaximize(); err != nil {
			return true, platformError("restore window", err)
		}
		return false, nil
	}
	if err := c.win.Maximize(); err != nil {
		return false, platformError("maximize window", err)
	}
	return true, nil
}

// run plans cmd against the live window and executes the plan. A newly
// recorded geometry is kept even if a later call fails; the mode and the
// consumption of the saved geometry are committed only after every call
// succeeded.
func (c *Controller) run(cmd Command) (State, error) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	cur := c.snapshot()
	obs, err := c.observe()
	if err != nil {
		return cur, err
	}

	next, effects := Plan(cur, cmd, obs)
	if cur.Saved == nil && next.Saved != nil {
		c.geomMu.Lock()
		c.saved = next.Saved
		c.geomMu.Unlock()
	}

	for _, e := range effects {
		if err := c.apply(e); err != nil {
			return cur, err
		}
	}

	c.modeMu.Lock()
	c.mode = next.Mode
	c.modeMu.Unlock()

	c.geomMu.Lock()
	c.saved = next.Saved
	c.geomMu.Unlock()
	return next, nil
}

func (c *Controller) snapshot() State {
	c.modeMu.Lock()
	defer c.modeMu.Unlock()
	c.geomMu.Lock()
	defer c.geomMu.Unlock()
	c.opacityMu.Lock()
	defer c.opacityMu.Unlock()
	return State{Mode: c.mode, Saved: c.saved, Opacity: c.opacity}
}

func (c *Controller) observe() (Observation, error) {
	maximized, err := c.win.IsMaximized()
	if err != nil {
		return Observation{}, platformError("read window state", err)
	}
	size, err := c.win.InnerSize()
	if err != nil {
		return Observation{}, platformError("read window size", err)
	}
	return Observation{Current: Geometry{Size: size, Maximized: maximized}}, nil
}

func (c *Controller) apply(e Effect) error {
	var err error
	switch e.Kind {
	case EffectUnmaximize:
		err = c.win.Unmaximize()
	case EffectMaximize:
		err = c.win.Maximize()
	case EffectResize:
		err = c.win.SetSize(e.Size)
	case EffectAlwaysOnTop:
		err = c.win.SetAlwaysOnTop(e.OnTop)
	case EffectAlpha:
		err = c.alpha.SetAlpha(e.Opacity)
	}
	if err != nil {
		return platformError(e.String(), err)
	}
	return nil
}
