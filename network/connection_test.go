package network

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/wfunc/lobbyclient/roomlist"
)

func TestEncodeDecodePacket(t *testing.T) {
	raw, err := EncodePacket(MsgTypeJoinRoom, []byte(`{"room_name":"Alpha"}`))
	if err != nil {
		t.Fatalf("EncodePacket failed: %v", err)
	}
	if !bytes.Equal(raw[:4], []byte{0, 101, 0, 21}) {
		t.Errorf("Unexpected header % x", raw[:4])
	}

	packet, err := DecodePacket(raw)
	if err != nil {
		t.Fatalf("DecodePacket failed: %v", err)
	}
	if packet.MsgID != MsgTypeJoinRoom || packet.Length != 21 {
		t.Errorf("Unexpected packet header: %+v", packet)
	}
	if string(packet.Data) != `{"room_name":"Alpha"}` {
		t.Errorf("Unexpected payload %q", packet.Data)
	}
}

func TestDecodePacket_Short(t *testing.T) {
	if _, err := DecodePacket([]byte{0, 1}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated header, got %v", err)
	}
	if _, err := DecodePacket([]byte{0, 1, 0, 5, 'a'}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated body, got %v", err)
	}
}

func TestEncodePacket_TooLarge(t *testing.T) {
	if _, err := EncodePacket(MsgTypeRoomListUpdate, make([]byte, 1<<16)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestDecode_MissingFieldsAreFalsy(t *testing.T) {
	var update RoomListUpdate
	if err := Decode([]byte(`{"rooms":[{"name":"Alpha","removed_from_list":true}]}`), &update); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := roomlist.RoomSummary{Name: "Alpha", RemovedFromList: true}
	if len(update.Rooms) != 1 || update.Rooms[0] != want {
		t.Errorf("Expected %+v, got %+v", want, update.Rooms)
	}
}

func TestEncode_Nil(t *testing.T) {
	data, err := Encode(nil)
	if err != nil || len(data) != 0 {
		t.Errorf("Expected empty body, got %q (%v)", data, err)
	}

	var req RoomRequest
	if err := Decode(nil, &req); err != nil || req.RoomName != "" {
		t.Errorf("Decoding an empty body should be a no-op, got %+v (%v)", req, err)
	}
}
