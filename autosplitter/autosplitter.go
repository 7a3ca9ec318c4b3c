// Package autosplitter hooks the game process and drives the speedrun from a tick loop.
package autosplitter

import (
	"context"
	"fmt"
	"time"

	"memsplit/config"
	"memsplit/game"
	"memsplit/memory"
	"memsplit/process"
	"memsplit/timer"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Autosplitter ties a Capture to a Speedrun. Everything it owns is touched only from the
// goroutine calling Step or Run.
type Autosplitter struct {
	cfg      config.Config
	capture  *Capture
	speedrun *game.Speedrun
	host     timer.Timer

	// Valid while hooked
	mi *memory.MemoryInterface

	log *logger.Logger
}

// New creates an autosplitter opening processes with opener and reporting to t
func New(cfg config.Config, opener process.Opener, t timer.Timer) *Autosplitter {
	a := &Autosplitter{
		cfg:      cfg,
		capture:  NewCapture(cfg.ProcessName, opener, cfg.HookRetryDelay, cfg.HookRetryMaxDelay),
		speedrun: game.NewSpeedrun(t),
		host:     t,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "autosplitter")),
	}
	a.capture.OnHooked(a.initializeHook)
	a.capture.OnLost(a.disposeHook)
	return a
}

func (a *Autosplitter) initializeHook(proc process.Process) error {
	mi, err := memory.New(proc, memory.WithViewSize(a.cfg.ScannerViewSize))
	if err != nil {
		return err
	}

	world, err := game.NewGameState(mi, game.Options{RegionBySignature: a.cfg.RegionBySignature})
	if err != nil {
		return fmt.Errorf("game state: %w", err)
	}

	a.mi = mi
	a.speedrun.Bind(world, game.NewPlayerController(mi))
	return nil
}

func (a *Autosplitter) disposeHook() {
	a.speedrun.Unbind()
	a.mi = nil

	// The next game may start from any paused state; the host must hear the first one
	if f, ok := a.host.(timer.Forgetter); ok {
		f.Forget()
	}
}

// Speedrun returns the state machine
func (a *Autosplitter) Speedrun() *game.Speedrun {
	return a.speedrun
}

// Hooked reports whether the game is hooked
func (a *Autosplitter) Hooked() bool {
	return a.capture.Process() != nil
}

// Step runs one tick: hook the game if needed, then advance the speedrun
func (a *Autosplitter) Step(now time.Time) {
	if !a.capture.EnsureHooked(now) {
		return
	}
	a.speedrun.Tick()
}

// Run ticks until ctx is done. Events raised on the host timer are read from hostEvents,
// which may be nil.
func (a *Autosplitter) Run(ctx context.Context, hostEvents <-chan timer.Event) error {
	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()
	defer a.capture.Unhook()

	a.log.Infoln("Waiting for", a.cfg.ProcessName, "every", a.cfg.TickInterval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-hostEvents:
			if !ok {
				hostEvents = nil
				continue
			}
			a.speedrun.HandleTimerEvent(e)
		case now := <-ticker.C:
			a.Step(now)
		}
	}
}

// Memory returns the façade of the hooked process or nil
func (a *Autosplitter) Memory() *memory.MemoryInterface {
	return a.mi
}
