package push

import (
	"github.com/looplab/fsm"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

const (
	eventConnect = "connect"
	eventOpen    = "open"
	eventDrop    = "drop"
	eventClose   = "close"
)

func newStateMachine() *fsm.FSM {
	var (
		disconnected = string(types.StateDisconnected)
		connecting   = string(types.StateConnecting)
		connected    = string(types.StateConnected)
	)

	return fsm.NewFSM(
		disconnected,
		fsm.Events{
			{Name: eventConnect, Src: []string{disconnected}, Dst: connecting},
			{Name: eventOpen, Src: []string{connecting}, Dst: connected},
			// unexpected close or failed dial
			{Name: eventDrop, Src: []string{connecting, connected}, Dst: disconnected},
			// manual close
			{Name: eventClose, Src: []string{connecting, connected}, Dst: disconnected},
		},
		fsm.Callbacks{},
	)
}
