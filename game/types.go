package game

import "fmt"

// Region is GameManager.CurrentRegion
type Region int32

const (
	RegionNone Region = iota
	RegionGeneric
	RegionHome
	RegionForest
	RegionHarbor
	RegionCity
	RegionMountain
	RegionMountainTop
	RegionUnknown
)

var regionNames = [...]string{
	RegionNone:        "None",
	RegionGeneric:     "Generic",
	RegionHome:        "Home",
	RegionForest:      "Forest",
	RegionHarbor:      "Harbor",
	RegionCity:        "City",
	RegionMountain:    "Mountain",
	RegionMountainTop: "MountainTop",
	RegionUnknown:     "Unknown",
}

// DecodeRegion maps a raw value to a Region, RegionUnknown for anything out of range
func DecodeRegion(raw int32) Region {
	if raw < int32(RegionNone) || raw >= int32(RegionUnknown) {
		return RegionUnknown
	}
	return Region(raw)
}

func (r Region) String() string {
	if r >= 0 && int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", int32(r))
}

// EndScreenState is TheEndScreen.myState
type EndScreenState int32

const (
	EndScreenFadeIn EndScreenState = iota
	EndScreenWait
	EndScreenInput
	EndScreenDone
	EndScreenUnknown
)

var endScreenNames = [...]string{
	EndScreenFadeIn:  "FadeIn",
	EndScreenWait:    "Wait",
	EndScreenInput:   "Input",
	EndScreenDone:    "Done",
	EndScreenUnknown: "Unknown",
}

// DecodeEndScreenState maps a raw value to an EndScreenState, EndScreenUnknown for anything
// out of range
func DecodeEndScreenState(raw int32) EndScreenState {
	if raw < int32(EndScreenFadeIn) || raw >= int32(EndScreenUnknown) {
		return EndScreenUnknown
	}
	return EndScreenState(raw)
}

func (s EndScreenState) String() string {
	if s >= 0 && int(s) < len(endScreenNames) {
		return endScreenNames[s]
	}
	return fmt.Sprintf("EndScreenState(%d)", int32(s))
}

// PlayerState is the player controller's active state object, classified by identity
type PlayerState int

const (
	PlayerRoaming PlayerState = iota
	PlayerSitting
	PlayerPlayAnimation
	PlayerFaceBoard
	PlayerClimbing
	PlayerUnknown
)

var playerStateNames = [...]string{
	PlayerRoaming:       "Roaming",
	PlayerSitting:       "Sitting",
	PlayerPlayAnimation: "PlayAnimation",
	PlayerFaceBoard:     "FaceBoard",
	PlayerClimbing:      "Climbing",
	PlayerUnknown:       "Unknown",
}

func (s PlayerState) String() string {
	if s >= 0 && int(s) < len(playerStateNames) {
		return playerStateNames[s]
	}
	return fmt.Sprintf("PlayerState(%d)", int(s))
}
