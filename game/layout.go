// Package game decodes TOEM's runtime state out of GameAssembly.dll and drives the speedrun
// lifecycle from it.
package game

import (
	"memsplit/memory"
	"memsplit/signature"
)

// GameAssembly is the IL2CPP module holding every TypeInfo slot below
const GameAssembly = "GameAssembly.dll"

// TypeInfo slots, relative to the GameAssembly base
const (
	gameManagerTypeInfo               = 0x1BBA520
	sceneTransitionControllerTypeInfo = 0x1BB22C0
	menuManagerTypeInfo               = 0x1BBBC60
	playerControllerTypeInfo          = 0x1B9D350
)

// Offset of the static fields pointer inside an IL2CPP class
const staticFieldsOffset = 0xB8

// Field offsets. Instance offsets already include the 0x10 byte object header.
const (
	atTitleScreenOffset  = 0x38 // GameManager static
	currentRegionOffset  = 0x48 // GameManager static
	isLoadingSceneOffset = 0x29 // SceneTransitionController static

	menuManagerInstanceOffset = 0x0  // MenuManager static
	theEndScreenOffset        = 0xD8 // MenuManager instance
	endScreenStateOffset      = 0x40 // TheEndScreen instance

	playerControllerInstanceOffset = 0x0 // PlayerController static

	currentStateOffset   = 0x200
	nextStateOffset      = 0x208
	roamStateOffset      = 0x218
	sitStateOffset       = 0x220
	animationStateOffset = 0x228
	faceBoardStateOffset = 0x230
	climbingStateOffset  = 0x238
)

// regionSignature locates the store into GameManager.CurrentRegion in builds where the
// TypeInfo slot moved. The eight wildcard bytes are the field's absolute address.
var regionSignature = signature.MustFrom("41 FF D3 48 8B CE 48 B8 ?? ?? ?? ?? ?? ?? ?? ?? 89 08 48 B8")

const regionSignatureOffset = 8

// staticFields returns a path to the static fields block of the class whose TypeInfo
// pointer lives at typeInfo
func staticFields(typeInfo int64) *memory.PointerPath {
	return memory.ModulePath(GameAssembly, typeInfo).Deref().Offset(staticFieldsOffset).Deref().Build()
}
