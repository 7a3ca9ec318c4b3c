package game

import (
	"fmt"

	"memsplit/timer"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// World is the global game state the speedrun reacts to. The Updated methods report whether
// the matching value was refreshed by the last Update; edges are only taken from refreshed
// values.
type World interface {
	Update()
	AtTitleScreen() bool
	WasAtTitleScreen() bool
	TitleUpdated() bool
	CurrentRegion() Region
	PreviousRegion() Region
	RegionUpdated() bool
	IsLoadingScene() bool
	EndScreen() EndScreenState
	PreviousEndScreen() EndScreenState
	EndScreenUpdated() bool
}

// Player is the player controller the speedrun reacts to
type Player interface {
	Update()
	CurrentState() PlayerState
}

// State is the lifecycle state of a speedrun
type State int

const (
	// Not bound to a game process
	Uninitialized State = iota
	// Waiting for the title screen to show up
	WaitingForTitleScreen
	// At the title screen, waiting for the player to sit in bed
	WaitingForBed
	// Sitting in bed, the run starts once the player gets up
	ReadyForLaunch
	// The run is in progress
	Playing
)

var stateNames = [...]string{
	Uninitialized:         "Uninitialized",
	WaitingForTitleScreen: "WaitingForTitleScreen",
	WaitingForBed:         "WaitingForBed",
	ReadyForLaunch:        "ReadyForLaunch",
	Playing:               "Playing",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Speedrun is the lifecycle state machine. It is driven from a single goroutine and holds no
// locks.
type Speedrun struct {
	timer  timer.Timer
	world  World
	player Player

	state  State
	paused bool
	split  int

	log *logger.Logger
}

// NewSpeedrun creates an unbound speedrun reporting to t
func NewSpeedrun(t timer.Timer) *Speedrun {
	s := &Speedrun{
		timer: t,
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "speedrun")),
	}
	s.Unbind()
	return s
}

// Bind attaches the speedrun to a freshly hooked game and starts waiting for the title screen
func (s *Speedrun) Bind(world World, player Player) {
	s.world = world
	s.player = player
	s.reset()
	s.log.Infoln("Bound to game")
}

// Unbind drops the game state. Tick does nothing until the next Bind.
func (s *Speedrun) Unbind() {
	s.reset()
	s.world = nil
	s.player = nil
	s.setState(Uninitialized)
}

func (s *Speedrun) reset() {
	s.setState(WaitingForTitleScreen)
	s.paused = true
	s.split = 0
}

func (s *Speedrun) setState(next State) {
	if s.state != next {
		s.log.Debugln("state", s.state.String(), "->", next.String())
	}
	s.state = next
}

// State returns the current lifecycle state
func (s *Speedrun) State() State {
	return s.state
}

// Paused reports whether the host timer was last paused
func (s *Speedrun) Paused() bool {
	return s.paused
}

// Split returns the index of the current split. It counts splits triggered here as well as
// those raised on the host.
func (s *Speedrun) Split() int {
	return s.split
}

// Tick refreshes the game state and evaluates one transition
func (s *Speedrun) Tick() {
	if s.state == Uninitialized {
		return
	}

	s.world.Update()
	s.player.Update()

	// Back at the menu mid-run
	if s.state >= ReadyForLaunch && s.world.TitleUpdated() && s.world.AtTitleScreen() && !s.world.WasAtTitleScreen() {
		wasPlaying := s.state == Playing
		s.reset()
		if wasPlaying {
			s.timer.Trigger(timer.Reset)
		}
		s.timer.SetGameTimePaused(true)
		s.log.Infoln("Returned to title screen, run reset")
		return
	}

	switch s.state {
	case WaitingForTitleScreen:
		s.timer.SetGameTimePaused(true)
		if s.world.AtTitleScreen() {
			s.setState(WaitingForBed)
		}

	case WaitingForBed:
		s.timer.SetGameTimePaused(true)
		if s.player.CurrentState() == PlayerSitting {
			s.setState(ReadyForLaunch)
		}

	case ReadyForLaunch:
		s.timer.SetGameTimePaused(true)
		if !s.world.AtTitleScreen() && s.player.CurrentState() == PlayerRoaming {
			s.setState(Playing)
			s.split = 0
			s.paused = false
			s.timer.Trigger(timer.Start)
			s.log.Infoln("Run started")
		}

	case Playing:
		s.tickPlaying()
	}
}

func (s *Speedrun) tickPlaying() {
	prev, cur := s.world.PreviousRegion(), s.world.CurrentRegion()
	if s.world.RegionUpdated() && prev != RegionUnknown && cur != RegionUnknown && cur > prev {
		s.log.Infoln("Region", prev.String(), "->", cur.String())
		s.triggerSplit()
	}

	end := s.world.EndScreen() == EndScreenInput
	if s.world.EndScreenUpdated() && end && s.world.PreviousEndScreen() != EndScreenInput {
		s.log.Infoln("End screen reached")
		s.triggerSplit()
	}

	s.timer.SetGameTimePaused(end || s.world.IsLoadingScene())
}

// triggerSplit raises a split on the host. The dispatcher does not echo triggers back through
// HandleTimerEvent, so the counter is advanced here.
func (s *Speedrun) triggerSplit() {
	s.split++
	s.timer.Trigger(timer.Split)
}

// HandleTimerEvent keeps the split counter and pause flag in step with events raised on the
// host timer
func (s *Speedrun) HandleTimerEvent(e timer.Event) {
	switch e {
	case timer.Reset:
		if s.state != Uninitialized {
			s.reset()
		}
	case timer.Pause:
		s.paused = true
	case timer.Resume:
		s.paused = false
	case timer.Start:
		s.split = 0
		s.paused = false
	case timer.Split, timer.SkipSplit:
		s.split++
	case timer.UndoSplit:
		s.split--
	}
	s.log.Debugln("host", e.String(), "state", s.state.String(), "split", s.split)
}
