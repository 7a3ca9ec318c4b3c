package game

import (
	"testing"

	"memsplit/process"
)

func (f *fixture) player() (statics, instance process.ProcessMemoryAddress) {
	statics = f.class(playerControllerTypeInfo, 4)
	instance = heapBase + 0x7000

	for i, off := range []int64{roamStateOffset, sitStateOffset, animationStateOffset, faceBoardStateOffset, climbingStateOffset} {
		f.put64(instance.Add(off), uint64(heapBase+0xA000)+uint64(i)*0x100)
	}
	return statics, instance
}

func stateObject(s PlayerState) uint64 {
	return uint64(heapBase+0xA000) + uint64(s)*0x100
}

func TestPlayerControllerWaitsForInstance(t *testing.T) {
	f := newFixture(t)
	statics, instance := f.player()

	pc := NewPlayerController(f.memory())
	pc.Update()
	if pc.Ready() || pc.CurrentState() != PlayerUnknown {
		t.Fatalf("ready = %v state = %v without an instance", pc.Ready(), pc.CurrentState())
	}

	f.put64(statics+playerControllerInstanceOffset, uint64(instance))
	f.put64(instance+currentStateOffset, stateObject(PlayerSitting))

	pc.Update()
	if !pc.Ready() {
		t.Fatalf("instance not picked up")
	}
	if got := pc.CurrentState(); got != PlayerSitting {
		t.Errorf("CurrentState = %v, want Sitting", got)
	}
}

func TestPlayerControllerClassifies(t *testing.T) {
	f := newFixture(t)
	statics, instance := f.player()
	f.put64(statics+playerControllerInstanceOffset, uint64(instance))

	pc := NewPlayerController(f.memory())

	for _, want := range []PlayerState{PlayerRoaming, PlayerSitting, PlayerPlayAnimation, PlayerFaceBoard, PlayerClimbing} {
		f.put64(instance+currentStateOffset, stateObject(want))
		f.put64(instance+nextStateOffset, stateObject(PlayerRoaming))
		pc.Update()
		if got := pc.CurrentState(); got != want {
			t.Errorf("CurrentState = %v, want %v", got, want)
		}
		if pc.NextState() != process.ProcessMemoryAddress(stateObject(PlayerRoaming)) {
			t.Errorf("NextState = %s", pc.NextState().ToString())
		}
	}

	f.put64(instance+currentStateOffset, 0xDEAD0000)
	pc.Update()
	if got := pc.CurrentState(); got != PlayerUnknown {
		t.Errorf("CurrentState = %v for a foreign state", got)
	}
}

func TestPlayerControllerTiesResolveInOrder(t *testing.T) {
	f := newFixture(t)
	statics, instance := f.player()
	f.put64(statics+playerControllerInstanceOffset, uint64(instance))

	// Sitting and climbing share an object; sitting comes first
	f.put64(instance+climbingStateOffset, stateObject(PlayerSitting))
	f.put64(instance+currentStateOffset, stateObject(PlayerSitting))

	pc := NewPlayerController(f.memory())
	pc.Update()
	if got := pc.CurrentState(); got != PlayerSitting {
		t.Errorf("CurrentState = %v, want Sitting", got)
	}
}

func TestPlayerControllerFollowsNewInstance(t *testing.T) {
	f := newFixture(t)
	statics, instance := f.player()
	f.put64(statics+playerControllerInstanceOffset, uint64(instance))
	f.put64(instance+currentStateOffset, stateObject(PlayerRoaming))

	pc := NewPlayerController(f.memory())
	pc.Update()

	// A scene load replaces the controller
	moved := heapBase + 0xB000
	f.put64(statics+playerControllerInstanceOffset, uint64(moved))
	f.put64(moved+roamStateOffset, stateObject(PlayerRoaming))
	f.put64(moved+climbingStateOffset, stateObject(PlayerClimbing))
	f.put64(moved+currentStateOffset, stateObject(PlayerClimbing))

	pc.Update()
	if got := pc.CurrentState(); got != PlayerClimbing {
		t.Errorf("CurrentState = %v, want Climbing", got)
	}
}
