package timer

import (
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Dispatcher implements Timer by forwarding to every registered Handler. Game time updates
// are forwarded only when the paused state changes.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler

	paused   bool
	pausedOK bool

	now func() time.Time
	log *logger.Logger
}

var _ Timer = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with no handlers
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		now: time.Now,
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "timer")),
	}
}

// Register adds a handler
func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) snapshot() []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	return handlers
}

func (d *Dispatcher) Trigger(e Event) {
	at := d.now()
	d.log.Infoln("timer", e.String())

	for _, h := range d.snapshot() {
		if err := h.HandleEvent(e, at); err != nil {
			d.log.Warn("error running timer handler for ", e.String(), ": ", err)
		}
	}
}

func (d *Dispatcher) SetGameTimePaused(paused bool) {
	d.mu.Lock()
	changed := !d.pausedOK || d.paused != paused
	d.paused, d.pausedOK = paused, true
	d.mu.Unlock()

	if !changed {
		return
	}

	at := d.now()
	d.log.Debugln("game time paused:", paused)

	for _, h := range d.snapshot() {
		if err := h.HandleGameTime(paused, at); err != nil {
			d.log.Warn("error running game time handler: ", err)
		}
	}
}

// Forget drops the remembered paused state so the next SetGameTimePaused is forwarded. The
// autosplitter calls it whenever the game is lost.
func (d *Dispatcher) Forget() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pausedOK = false
}
