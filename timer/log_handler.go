package timer

import (
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LogHandler writes timer activity to the console and keeps the split count of the current run
type LogHandler struct {
	log *logger.Logger

	mu      sync.Mutex
	started time.Time
	splits  int
}

func NewLogHandler() *LogHandler {
	return &LogHandler{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "splits")),
	}
}

func (h *LogHandler) HandleEvent(e Event, at time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e {
	case Start:
		h.started, h.splits = at, 0
		h.log.Infoln("run started")
	case Split:
		h.splits++
		h.log.Infoln("split", h.splits, "at", at.Sub(h.started).Round(time.Millisecond))
	case Reset:
		h.log.Infoln("run reset after", h.splits, "splits")
		h.splits = 0
	default:
		h.log.Infoln(e.String())
	}
	return nil
}

func (h *LogHandler) HandleGameTime(paused bool, at time.Time) error {
	return nil
}
