package game

import (
	"fmt"

	"memsplit/memory"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Options selects how GameState locates its fields
type Options struct {
	// RegionBySignature resolves CurrentRegion by scanning code for the instruction that
	// stores it, instead of through the GameManager TypeInfo slot
	RegionBySignature bool
}

// GameState watches the global game flags: title screen, region, scene loading and the end
// screen
type GameState struct {
	titlePath     *memory.PointerPath
	regionPath    *memory.PointerPath
	loadingPath   *memory.PointerPath
	endScreenPath *memory.PointerPath

	title     *memory.VariableWatcher[bool]
	region    *memory.VariableWatcher[int32]
	loading   *memory.VariableWatcher[bool]
	endScreen *memory.VariableWatcher[int32]

	// set when the matching watcher refreshed on the last Update
	titleOK, regionOK, endScreenOK bool

	log *logger.Logger
}

var _ World = (*GameState)(nil)

// NewGameState resolves every path and creates the watchers. Any resolution failure fails the
// whole attachment.
func NewGameState(mi *memory.MemoryInterface, opts Options) (*GameState, error) {
	gs := &GameState{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "gamestate")),
	}

	gameManager := staticFields(gameManagerTypeInfo)
	gs.titlePath = gameManager.Extend().Offset(atTitleScreenOffset).Build()
	if opts.RegionBySignature {
		gs.regionPath = memory.SignaturePath(regionSignature, regionSignatureOffset, true).Build()
	} else {
		gs.regionPath = gameManager.Extend().Offset(currentRegionOffset).Build()
	}

	gs.loadingPath = staticFields(sceneTransitionControllerTypeInfo).Extend().Offset(isLoadingSceneOffset).Build()

	menuManager := staticFields(menuManagerTypeInfo).Extend().Offset(menuManagerInstanceOffset).Deref().Build()
	endScreen := menuManager.Extend().Offset(theEndScreenOffset).Deref().Build()
	gs.endScreenPath = endScreen.Extend().Offset(endScreenStateOffset).Build()

	for _, p := range gs.paths() {
		p.Flush(true)
	}

	var err error
	if gs.title, err = memory.WatchVariable(mi, gs.titlePath, memory.Bool, false); err != nil {
		return nil, fmt.Errorf("title screen flag: %w", err)
	}
	if gs.region, err = memory.WatchVariable(mi, gs.regionPath, memory.Int32, -1); err != nil {
		return nil, fmt.Errorf("current region: %w", err)
	}
	if gs.loading, err = memory.WatchVariable(mi, gs.loadingPath, memory.Bool, false); err != nil {
		return nil, fmt.Errorf("scene loading flag: %w", err)
	}
	if gs.endScreen, err = memory.WatchVariable(mi, gs.endScreenPath, memory.Int32, -1); err != nil {
		return nil, fmt.Errorf("end screen state: %w", err)
	}

	gs.log.Infoln("Watching", gs.titlePath, "|", gs.regionPath, "|", gs.loadingPath, "|", gs.endScreenPath)

	return gs, nil
}

func (gs *GameState) paths() []*memory.PointerPath {
	return []*memory.PointerPath{gs.titlePath, gs.regionPath, gs.loadingPath, gs.endScreenPath}
}

// Update re-walks every path and refreshes the watchers. A failing watcher keeps its last
// value and reports not updated until its next successful read.
func (gs *GameState) Update() {
	for _, p := range gs.paths() {
		p.Flush(false)
	}

	gs.titleOK = gs.refresh("title screen flag", gs.title.Update())
	gs.regionOK = gs.refresh("current region", gs.region.Update())
	gs.refresh("scene loading flag", gs.loading.Update())
	gs.endScreenOK = gs.refresh("end screen state", gs.endScreen.Update())
}

func (gs *GameState) refresh(what string, err error) bool {
	if err != nil {
		gs.log.Debugln(what+":", err)
		return false
	}
	return true
}

// TitleUpdated reports whether the title screen flag was read on the last Update
func (gs *GameState) TitleUpdated() bool {
	return gs.titleOK
}

// RegionUpdated reports whether the current region was read on the last Update
func (gs *GameState) RegionUpdated() bool {
	return gs.regionOK
}

// EndScreenUpdated reports whether the end screen state was read on the last Update
func (gs *GameState) EndScreenUpdated() bool {
	return gs.endScreenOK
}

func (gs *GameState) AtTitleScreen() bool {
	return gs.title.Current()
}

func (gs *GameState) WasAtTitleScreen() bool {
	return gs.title.Old()
}

func (gs *GameState) CurrentRegion() Region {
	return DecodeRegion(gs.region.Current())
}

func (gs *GameState) PreviousRegion() Region {
	return DecodeRegion(gs.region.Old())
}

func (gs *GameState) IsLoadingScene() bool {
	return gs.loading.Current()
}

func (gs *GameState) EndScreen() EndScreenState {
	return DecodeEndScreenState(gs.endScreen.Current())
}

func (gs *GameState) PreviousEndScreen() EndScreenState {
	return DecodeEndScreenState(gs.endScreen.Old())
}
