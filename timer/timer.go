// Package timer defines the control events sent to a speedrun timer and fans them out to
// registered handlers.
package timer

import (
	"fmt"
	"strings"
	"time"
)

// Event is a timer control action
type Event int

const (
	Reset Event = iota
	Pause
	Resume
	Start
	Split
	UndoSplit
	SkipSplit
)

var eventNames = [...]string{
	Reset:     "reset",
	Pause:     "pause",
	Resume:    "resume",
	Start:     "start",
	Split:     "split",
	UndoSplit: "undo_split",
	SkipSplit: "skip_split",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ParseEvent accepts the names returned by Event.String, ignoring case and separators
func ParseEvent(s string) (Event, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for e, name := range eventNames {
		if strings.ReplaceAll(name, "_", "") == norm {
			return Event(e), nil
		}
	}
	return 0, fmt.Errorf("unknown timer event %q", s)
}

// Timer is the host timer driven by the autosplitter
type Timer interface {
	// Trigger sends a control event
	Trigger(e Event)

	// SetGameTimePaused pauses or resumes game time. It is called every tick.
	SetGameTimePaused(paused bool)
}

// Forgetter is a Timer that drops repeated paused states. Forget makes it forward the next one.
type Forgetter interface {
	Forget()
}

// Handler receives timer activity from a Dispatcher
type Handler interface {
	HandleEvent(e Event, at time.Time) error
	HandleGameTime(paused bool, at time.Time) error
}
