package network

import (
	"encoding/json"

	"github.com/wfunc/lobbyclient/roomlist"
)

const (
	MsgTypeHeartbeat = 1

	// 连接
	MsgTypeConnect           = 10
	MsgTypeConnectedToMaster = 11

	// 大厅
	MsgTypeJoinLobby      = 20
	MsgTypeLeaveLobby     = 21
	MsgTypeJoinedLobby    = 22
	MsgTypeLeftLobby      = 23
	MsgTypeRoomListUpdate = 24

	// 房间
	MsgTypeJoinRoom       = 101
	MsgTypeLeaveRoom      = 102
	MsgTypeCreateRoom     = 103
	MsgTypeJoinRandomRoom = 104
	MsgTypeCreatedRoom    = 110
	MsgTypeJoinedRoom     = 111
	MsgTypeLeftRoom       = 112

	MsgTypeOperationFailed = 120
)

type ConnectRequest struct {
	ClientID string `json:"client_id"`
	Nickname string `json:"nickname"`
}

type ConnectedToMaster struct {
	Nickname string `json:"nickname"`
}

type CreateRoomRequest struct {
	RoomName   string `json:"room_name"`
	MaxPlayers int    `json:"max_players"`
}

// RoomRequest names a room; used by join requests and created/joined replies.
type RoomRequest struct {
	RoomName string `json:"room_name"`
}

type RoomListUpdate struct {
	Rooms []roomlist.RoomSummary `json:"rooms"`
}

type OperationFailed struct {
	Op      uint16 `json:"op"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Encode marshals a payload; a nil payload encodes as an empty body.
func Encode(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}
	return json.Marshal(v)
}

// Decode unmarshals a payload. An empty body leaves v untouched.
func Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
