package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

func room(name string, players, max int) roomlist.RoomSummary {
	return roomlist.RoomSummary{Name: name, IsOpen: true, IsVisible: true, PlayerCount: players, MaxPlayers: max}
}

func TestRoomList_Apply(t *testing.T) {
	var joined []string
	list := NewRoomList(func(name string) { joined = append(joined, name) })

	list.Apply([]roomlist.ViewOp{roomlist.Add(room("Alpha", 1, 4)), roomlist.Add(room("Beta", 0, 2))})
	if list.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", list.Len())
	}

	list.Apply([]roomlist.ViewOp{roomlist.Update(room("Alpha", 2, 4))})
	alpha, ok := list.Get("Alpha")
	if !ok {
		t.Fatal("Alpha entry missing")
	}
	if alpha.PlayersText != "2 / 4" {
		t.Errorf("Expected refreshed players text 2 / 4, got %q", alpha.PlayersText)
	}

	entries := list.Entries()
	if entries[0].RoomName != "Alpha" || entries[1].RoomName != "Beta" {
		t.Errorf("Entries should keep insertion order, got %s, %s", entries[0].RoomName, entries[1].RoomName)
	}

	entries[1].Join()
	if len(joined) != 1 || joined[0] != "Beta" {
		t.Errorf("Join should be bound to Beta, got %v", joined)
	}

	list.Apply([]roomlist.ViewOp{roomlist.Remove("Alpha"), roomlist.Remove("Missing")})
	if _, ok := list.Get("Alpha"); ok {
		t.Error("Alpha should have been destroyed")
	}
	if list.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", list.Len())
	}

	list.Clear()
	if list.Len() != 0 || len(list.Entries()) != 0 {
		t.Error("Clear should destroy every entry")
	}
}

func TestText_Presenter(t *testing.T) {
	var buf bytes.Buffer
	text := NewText(&buf)

	text.ShowPanel(panel.RoomList)
	text.SetStatus(session.JoinedLobby)
	text.ApplyRoomOps([]roomlist.ViewOp{roomlist.Add(room("Alpha", 1, 4))})
	text.ApplyRoomOps([]roomlist.ViewOp{roomlist.Update(room("Alpha", 2, 4)), roomlist.Remove("Alpha")})
	text.Notify("no match found")

	want := strings.Join([]string{
		"[panel] room_list",
		"[status] Connection Status: JoinedLobby",
		"+ Alpha 1 / 4",
		"~ Alpha 2 / 4",
		"- Alpha",
		"[notice] no match found",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestText_PrintRooms(t *testing.T) {
	var buf bytes.Buffer
	text := NewText(&buf)

	text.PrintRooms()
	if !strings.Contains(buf.String(), "No rooms listed.") {
		t.Errorf("Expected empty notice, got %q", buf.String())
	}

	text.ApplyRoomOps([]roomlist.ViewOp{roomlist.Add(room("Alpha", 3, 8))})
	buf.Reset()
	text.PrintRooms()
	if !strings.Contains(buf.String(), "Alpha") || !strings.Contains(buf.String(), "3 / 8") {
		t.Errorf("Expected Alpha 3 / 8 in table, got %q", buf.String())
	}
}
