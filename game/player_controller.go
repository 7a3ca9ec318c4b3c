package game

import (
	"memsplit/memory"
	"memsplit/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// noState is the default of the reference state slots. It never equals a live state pointer
// or the zero default of the current state slot.
const noState = process.ProcessMemoryAddress(0xFFFFFFFFFFFFFFFF)

type stateRef struct {
	state   PlayerState
	offset  int64
	watcher *memory.VariableWatcher[process.ProcessMemoryAddress]
}

// PlayerController classifies the player's state machine. The controller instance only
// exists once a save is loaded, so watchers are created on the first Update that finds it.
type PlayerController struct {
	mi       *memory.MemoryInterface
	instance *memory.PointerPath
	ready    bool

	current *memory.VariableWatcher[process.ProcessMemoryAddress]
	next    *memory.VariableWatcher[process.ProcessMemoryAddress]

	// Classification order. The first reference equal to the current state wins.
	refs []stateRef

	log *logger.Logger
}

var _ Player = (*PlayerController)(nil)

// NewPlayerController builds the controller paths. Nothing is read until Update.
func NewPlayerController(mi *memory.MemoryInterface) *PlayerController {
	return &PlayerController{
		mi:       mi,
		instance: staticFields(playerControllerTypeInfo).Extend().Offset(playerControllerInstanceOffset).Deref().Build(),
		refs: []stateRef{
			{state: PlayerRoaming, offset: roamStateOffset},
			{state: PlayerSitting, offset: sitStateOffset},
			{state: PlayerPlayAnimation, offset: animationStateOffset},
			{state: PlayerFaceBoard, offset: faceBoardStateOffset},
			{state: PlayerClimbing, offset: climbingStateOffset},
		},
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "player")),
	}
}

func (pc *PlayerController) field(offset int64) *memory.PointerPath {
	return pc.instance.Extend().Offset(offset).Build()
}

func (pc *PlayerController) attach() error {
	pc.instance.Flush(false)
	addr, err := pc.instance.Follow(pc.mi)
	if err != nil {
		return err
	}

	watch := func(offset int64, def process.ProcessMemoryAddress) (*memory.VariableWatcher[process.ProcessMemoryAddress], error) {
		return memory.WatchVariable(pc.mi, pc.field(offset), memory.Pointer, def)
	}

	if pc.current, err = watch(currentStateOffset, 0); err != nil {
		return err
	}
	if pc.next, err = watch(nextStateOffset, 0); err != nil {
		return err
	}
	for i := range pc.refs {
		if pc.refs[i].watcher, err = watch(pc.refs[i].offset, noState); err != nil {
			return err
		}
	}

	pc.ready = true
	pc.log.Infoln("Player controller at", addr.ToString())
	return nil
}

func (pc *PlayerController) watchers() []*memory.VariableWatcher[process.ProcessMemoryAddress] {
	ws := []*memory.VariableWatcher[process.ProcessMemoryAddress]{pc.current, pc.next}
	for _, r := range pc.refs {
		ws = append(ws, r.watcher)
	}
	return ws
}

// Update refreshes every state slot. The state objects get reallocated at runtime, so each
// path is walked from the TypeInfo slot every tick.
func (pc *PlayerController) Update() {
	if !pc.ready {
		if err := pc.attach(); err != nil {
			pc.log.Debugln("player controller not available:", err)
			return
		}
	}

	for _, w := range pc.watchers() {
		w.Path().Flush(false)
		if err := w.Update(); err != nil {
			pc.log.Debugln(w.Path(), err)
		}
	}
}

// Ready reports whether the controller instance has been found
func (pc *PlayerController) Ready() bool {
	return pc.ready
}

// CurrentState classifies the current state pointer against the reference states in order
func (pc *PlayerController) CurrentState() PlayerState {
	if !pc.ready {
		return PlayerUnknown
	}

	cur := pc.current.Current()
	for _, r := range pc.refs {
		if r.watcher.Current() == cur {
			return r.state
		}
	}
	return PlayerUnknown
}

// NextState returns the raw pending state pointer
func (pc *PlayerController) NextState() process.ProcessMemoryAddress {
	if !pc.ready {
		return 0
	}
	return pc.next.Current()
}
