package autosplitter

import (
	"fmt"
	"time"

	"memsplit/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/cenkalti/backoff/v5"
)

// Capture keeps a process hooked by name. Attempts are spaced by an exponential backoff that
// resets on every successful hook.
type Capture struct {
	name    string
	opener  process.Opener
	backoff *backoff.ExponentialBackOff

	proc        process.Process
	nextAttempt time.Time

	onHooked func(process.Process) error
	onLost   func()

	log *logger.Logger
}

// NewCapture creates a capture for the process called name. The first attempt happens on the
// first EnsureHooked call.
func NewCapture(name string, opener process.Opener, delay, maxDelay time.Duration) *Capture {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.MaxInterval = maxDelay
	b.RandomizationFactor = 0
	b.Reset()

	return &Capture{
		name:     name,
		opener:   opener,
		backoff:  b,
		onHooked: func(process.Process) error { return nil },
		onLost:   func() {},
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "capture-"+name)),
	}
}

// OnHooked sets the callback run after a process is opened. An error unhooks it again.
func (c *Capture) OnHooked(fn func(process.Process) error) {
	c.onHooked = fn
}

// OnLost sets the callback run before a hooked process is released
func (c *Capture) OnLost(fn func()) {
	c.onLost = fn
}

// Process returns the hooked process or nil
func (c *Capture) Process() process.Process {
	return c.proc
}

// IsHooked reports whether a live process is hooked, releasing one that has exited
func (c *Capture) IsHooked() bool {
	if c.proc == nil {
		return false
	}
	if !c.proc.IsAlive() {
		c.log.Infoln("Process", c.proc.GetPID(), "exited")
		c.Unhook()
		return false
	}
	return true
}

// EnsureHooked hooks the process if it is not hooked and an attempt is due
func (c *Capture) EnsureHooked(now time.Time) bool {
	if c.IsHooked() {
		return true
	}
	if now.Before(c.nextAttempt) {
		return false
	}

	if err := c.hook(); err != nil {
		delay := c.backoff.NextBackOff()
		c.nextAttempt = now.Add(delay)
		c.log.Debugln("hook failed:", err, "retrying in", delay)
		return false
	}

	c.backoff.Reset()
	c.nextAttempt = time.Time{}
	return true
}

func (c *Capture) hook() error {
	proc, err := c.opener.Open(c.name)
	if err != nil {
		return err
	}

	c.proc = proc
	c.log.Infoln("Hooked process", proc.GetPID())

	if err := c.onHooked(proc); err != nil {
		c.log.Warn("failed to initialize hook on ", proc.GetPID(), ": ", err)
		c.Unhook()
		return fmt.Errorf("initialize hook: %w", err)
	}
	return nil
}

// Unhook releases the hooked process
func (c *Capture) Unhook() {
	if c.proc == nil {
		return
	}

	c.onLost()

	if err := c.proc.Close(); err != nil {
		c.log.Warn("error closing process ", c.proc.GetPID(), ": ", err)
	}
	c.proc = nil
}
