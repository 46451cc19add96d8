package directory

import (
	"fmt"

	"github.com/wfunc/lobbyclient/network"
	"github.com/wfunc/lobbyclient/roomlist"
)

// Event is delivered on Client.Events in the order the directory sent it.
type Event interface {
	EventName() string
}

// Connected fires once the transport is up, before the directory greets us.
type Connected struct{}

type ConnectedToMaster struct {
	Nickname string
}

type JoinedLobby struct{}

type LeftLobby struct{}

// RoomListUpdate carries a partial room list; rooms absent from it are unchanged.
type RoomListUpdate struct {
	Rooms []roomlist.RoomSummary
}

type CreatedRoom struct {
	Name string
}

type JoinedRoom struct {
	Name string
}

type LeftRoom struct{}

type OperationFailed struct {
	Op      uint16
	Code    int
	Message string
}

// Disconnected ends a connection. Err is nil for a local Disconnect.
type Disconnected struct {
	Err error
}

func (Connected) EventName() string         { return "connected" }
func (ConnectedToMaster) EventName() string { return "connected_to_master" }
func (JoinedLobby) EventName() string       { return "joined_lobby" }
func (LeftLobby) EventName() string         { return "left_lobby" }
func (RoomListUpdate) EventName() string    { return "room_list_update" }
func (CreatedRoom) EventName() string       { return "created_room" }
func (JoinedRoom) EventName() string        { return "joined_room" }
func (LeftRoom) EventName() string          { return "left_room" }
func (OperationFailed) EventName() string   { return "operation_failed" }
func (Disconnected) EventName() string      { return "disconnected" }

func (e OperationFailed) Error() string {
	return fmt.Sprintf("operation %d failed (%d): %s", e.Op, e.Code, e.Message)
}

// decodeEvent maps a packet to an event. Heartbeats and unknown messages
// yield a nil event.
func decodeEvent(packet *network.Packet) (Event, error) {
	switch packet.MsgID {
	case network.MsgTypeConnectedToMaster:
		var msg network.ConnectedToMaster
		if err := network.Decode(packet.Data, &msg); err != nil {
			return nil, err
		}
		return ConnectedToMaster{Nickname: msg.Nickname}, nil
	case network.MsgTypeJoinedLobby:
		return JoinedLobby{}, nil
	case network.MsgTypeLeftLobby:
		return LeftLobby{}, nil
	case network.MsgTypeRoomListUpdate:
		var msg network.RoomListUpdate
		if err := network.Decode(packet.Data, &msg); err != nil {
			return nil, err
		}
		return RoomListUpdate{Rooms: msg.Rooms}, nil
	case network.MsgTypeCreatedRoom:
		var msg network.RoomRequest
		if err := network.Decode(packet.Data, &msg); err != nil {
			return nil, err
		}
		return CreatedRoom{Name: msg.RoomName}, nil
	case network.MsgTypeJoinedRoom:
		var msg network.RoomRequest
		if err := network.Decode(packet.Data, &msg); err != nil {
			return nil, err
		}
		return JoinedRoom{Name: msg.RoomName}, nil
	case network.MsgTypeLeftRoom:
		return LeftRoom{}, nil
	case network.MsgTypeOperationFailed:
		var msg network.OperationFailed
		if err := network.Decode(packet.Data, &msg); err != nil {
			return nil, err
		}
		return OperationFailed{Op: msg.Op, Code: msg.Code, Message: msg.Message}, nil
	default:
		return nil, nil
	}
}
