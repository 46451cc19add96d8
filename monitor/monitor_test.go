package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

func TestMonitor_RoomOps(t *testing.T) {
	m := NewMonitor("lobby")
	alpha := roomlist.RoomSummary{Name: "Alpha", IsOpen: true, IsVisible: true}

	m.ApplyRoomOps([]roomlist.ViewOp{roomlist.Add(alpha), roomlist.Add(roomlist.RoomSummary{Name: "Beta"})})
	m.ApplyRoomOps([]roomlist.ViewOp{roomlist.Update(alpha), roomlist.Remove("Beta")})

	if got := testutil.ToFloat64(m.Metrics().ViewOps.WithLabelValues("add")); got != 2 {
		t.Errorf("Expected 2 adds, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().ViewOps.WithLabelValues("update")); got != 1 {
		t.Errorf("Expected 1 update, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().ListedRooms); got != 1 {
		t.Errorf("Expected 1 listed room, got %v", got)
	}
}

func TestMonitor_PresenterCalls(t *testing.T) {
	m := NewMonitor("lobby")

	m.ShowPanel(panel.RoomList)
	m.ShowPanel(panel.RoomList)
	m.SetStatus(session.JoinedLobby)
	m.Notify("oops")
	m.ObserveBatch(3, time.Millisecond)

	if got := testutil.ToFloat64(m.Metrics().PanelSwitches.WithLabelValues("room_list")); got != 2 {
		t.Errorf("Expected 2 room_list switches, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().ConnectionState); got != float64(session.JoinedLobby) {
		t.Errorf("Expected state %d, got %v", session.JoinedLobby, got)
	}
	if got := testutil.ToFloat64(m.Metrics().Batches); got != 1 {
		t.Errorf("Expected 1 batch, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().Notices); got != 1 {
		t.Errorf("Expected 1 notice, got %v", got)
	}
}

func TestMonitor_Handler(t *testing.T) {
	m := NewMonitor("lobby")
	m.ObserveBatch(1, time.Microsecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"lobby_room_list_batches_total 1", "lobby_uptime_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected %q in metrics output", name)
		}
	}
}
