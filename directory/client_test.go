package directory

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/lobbyclient/network"
	"github.com/wfunc/lobbyclient/roomlist"
)

// fakeDirectory answers lobby requests the way a directory server would.
type fakeDirectory struct {
	upgrader websocket.Upgrader
	rooms    []roomlist.RoomSummary
	received chan *network.Packet
	closeAll chan struct{}
}

func newFakeDirectory(rooms ...roomlist.RoomSummary) *fakeDirectory {
	return &fakeDirectory{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		rooms:    rooms,
		received: make(chan *network.Packet, 16),
		closeAll: make(chan struct{}),
	}
}

func (f *fakeDirectory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	wsConn := network.NewWSConnection(conn)
	defer wsConn.Close()

	go func() {
		<-f.closeAll
		wsConn.Close()
	}()

	for {
		packet, err := wsConn.ReadPacket()
		if err != nil {
			return
		}
		f.received <- packet

		switch packet.MsgID {
		case network.MsgTypeConnect:
			var req network.ConnectRequest
			network.Decode(packet.Data, &req)
			data, _ := network.Encode(network.ConnectedToMaster{Nickname: req.Nickname})
			wsConn.Send(network.MsgTypeConnectedToMaster, data)
		case network.MsgTypeJoinLobby:
			wsConn.Send(network.MsgTypeJoinedLobby, nil)
			data, _ := network.Encode(network.RoomListUpdate{Rooms: f.rooms})
			wsConn.Send(network.MsgTypeRoomListUpdate, data)
		case network.MsgTypeJoinRoom:
			var req network.RoomRequest
			network.Decode(packet.Data, &req)
			data, _ := network.Encode(network.RoomRequest{RoomName: req.RoomName})
			wsConn.Send(network.MsgTypeJoinedRoom, data)
		case network.MsgTypeJoinRandomRoom:
			data, _ := network.Encode(network.OperationFailed{Op: packet.MsgID, Code: 32760, Message: "no match found"})
			wsConn.Send(network.MsgTypeOperationFailed, data)
		}
	}
}

func startFake(t *testing.T, fake *fakeDirectory) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(fake)
	client := NewClient(Options{
		URL:         "ws" + strings.TrimPrefix(srv.URL, "http"),
		ClientID:    "test-client",
		QueueSize:   4,
		DialTimeout: time.Second,
	})
	return client, func() {
		client.Close()
		close(fake.closeAll)
		srv.Close()
	}
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
		return nil
	}
}

func TestClient_NotConnected(t *testing.T) {
	client := NewClient(Options{URL: "ws://127.0.0.1:1/ws"})
	defer client.Close()

	if err := client.JoinLobby(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
	if err := client.Disconnect(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestClient_ConnectAndBrowse(t *testing.T) {
	alpha := roomlist.RoomSummary{Name: "Alpha", IsOpen: true, IsVisible: true, PlayerCount: 1, MaxPlayers: 4}
	fake := newFakeDirectory(alpha)
	client, stop := startFake(t, fake)
	defer stop()

	if err := client.Connect(context.Background(), "neo"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := client.Connect(context.Background(), "neo"); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("Expected ErrAlreadyConnected, got %v", err)
	}

	if _, ok := nextEvent(t, client).(Connected); !ok {
		t.Fatal("Expected Connected first")
	}
	if ev, ok := nextEvent(t, client).(ConnectedToMaster); !ok || ev.Nickname != "neo" {
		t.Fatalf("Expected ConnectedToMaster for neo, got %+v", ev)
	}

	hello := <-fake.received
	var req network.ConnectRequest
	if err := network.Decode(hello.Data, &req); err != nil || req.ClientID != "test-client" {
		t.Errorf("Unexpected connect request %+v (%v)", req, err)
	}

	if err := client.JoinLobby(); err != nil {
		t.Fatalf("JoinLobby failed: %v", err)
	}
	if _, ok := nextEvent(t, client).(JoinedLobby); !ok {
		t.Fatal("Expected JoinedLobby")
	}
	update, ok := nextEvent(t, client).(RoomListUpdate)
	if !ok {
		t.Fatal("Expected RoomListUpdate")
	}
	if !reflect.DeepEqual(update.Rooms, []roomlist.RoomSummary{alpha}) {
		t.Errorf("Unexpected rooms %+v", update.Rooms)
	}

	if err := client.JoinRoom("Alpha"); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if ev, ok := nextEvent(t, client).(JoinedRoom); !ok || ev.Name != "Alpha" {
		t.Fatalf("Expected JoinedRoom Alpha, got %+v", ev)
	}

	if err := client.JoinRandomRoom(); err != nil {
		t.Fatalf("JoinRandomRoom failed: %v", err)
	}
	failed, ok := nextEvent(t, client).(OperationFailed)
	if !ok || failed.Op != network.MsgTypeJoinRandomRoom || failed.Message != "no match found" {
		t.Fatalf("Expected OperationFailed for join random, got %+v", failed)
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if ev, ok := nextEvent(t, client).(Disconnected); !ok || ev.Err != nil {
		t.Fatalf("Expected clean Disconnected, got %+v", ev)
	}
}

func TestClient_ServerDrop(t *testing.T) {
	fake := newFakeDirectory()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := NewClient(Options{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})
	defer client.Close()

	if err := client.Connect(context.Background(), "neo"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	nextEvent(t, client) // Connected
	nextEvent(t, client) // ConnectedToMaster

	close(fake.closeAll)

	ev, ok := nextEvent(t, client).(Disconnected)
	if !ok || ev.Err == nil {
		t.Fatalf("Expected Disconnected with an error, got %+v", ev)
	}
	if err := client.JoinLobby(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected after drop, got %v", err)
	}
}

func TestDecodeEvent_Unknown(t *testing.T) {
	ev, err := decodeEvent(&network.Packet{MsgID: network.MsgTypeHeartbeat})
	if err != nil || ev != nil {
		t.Errorf("Expected heartbeat to be ignored, got %v (%v)", ev, err)
	}

	if _, err := decodeEvent(&network.Packet{MsgID: network.MsgTypeRoomListUpdate, Data: []byte("{")}); err == nil {
		t.Error("Expected malformed update to fail decoding")
	}
}

func TestClient_HeartbeatOverWebsocket(t *testing.T) {
	fake := newFakeDirectory()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	defer close(fake.closeAll)

	client := NewClient(Options{
		URL:               "ws" + strings.TrimPrefix(srv.URL, "http"),
		HeartbeatInterval: 300 * time.Millisecond,
	})
	defer client.Close()

	if err := client.Connect(context.Background(), "neo"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	nextEvent(t, client) // Connected
	nextEvent(t, client) // ConnectedToMaster

	// Three beats span more than one read deadline, so pongs kept the link up.
	beats := 0
	timeout := time.After(3 * time.Second)
	for beats < 3 {
		select {
		case packet := <-fake.received:
			if packet.MsgID == network.MsgTypeHeartbeat {
				beats++
			}
		case <-timeout:
			t.Fatalf("Expected 3 heartbeats, got %d", beats)
		}
	}
	if client.timers.Pending() != 1 {
		t.Errorf("Expected one scheduled heartbeat, got %d", client.timers.Pending())
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if ev, ok := nextEvent(t, client).(Disconnected); !ok || ev.Err != nil {
		t.Fatalf("Expected clean Disconnected, got %+v", ev)
	}
	if client.timers.Pending() != 0 {
		t.Errorf("Expected heartbeat timer removed on disconnect, got %d pending", client.timers.Pending())
	}
}

// memConn is an in-memory network.Connection.
type memConn struct {
	mutex     sync.Mutex
	sent      []uint16
	pings     int
	heartbeat time.Duration
	closed    chan struct{}
	closeOnce sync.Once
}

func newMemConn() *memConn {
	return &memConn{closed: make(chan struct{})}
}

func (m *memConn) Send(msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sent = append(m.sent, msgID)
	return nil
}

func (m *memConn) ReadPacket() (*network.Packet, error) {
	<-m.closed
	return nil, io.EOF
}

func (m *memConn) SetHeartbeat(interval time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.heartbeat = interval
}

func (m *memConn) Ping() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pings++
	return nil
}

func (m *memConn) CloseGracefully() error { return m.Close() }

func (m *memConn) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *memConn) heartbeats() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	n := 0
	for _, id := range m.sent {
		if id == network.MsgTypeHeartbeat {
			n++
		}
	}
	return n
}

func TestClient_HeartbeatStopsAfterDisconnect(t *testing.T) {
	conn := newMemConn()
	client := NewClient(Options{
		URL:               "mem://directory",
		HeartbeatInterval: 100 * time.Millisecond,
		Dial: func(ctx context.Context, url string) (network.Connection, error) {
			return conn, nil
		},
	})
	defer client.Close()

	if err := client.Connect(context.Background(), "neo"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, ok := nextEvent(t, client).(Connected); !ok {
		t.Fatal("Expected Connected first")
	}

	deadline := time.Now().Add(2 * time.Second)
	for conn.heartbeats() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if conn.heartbeats() < 2 {
		t.Fatalf("Expected at least 2 heartbeats, got %d", conn.heartbeats())
	}

	conn.mutex.Lock()
	interval, pings, first := conn.heartbeat, conn.pings, conn.sent[0]
	conn.mutex.Unlock()
	if interval != 100*time.Millisecond || pings == 0 || first != network.MsgTypeConnect {
		t.Errorf("Unexpected connection use: interval %v, %d pings, first message %d", interval, pings, first)
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if ev, ok := nextEvent(t, client).(Disconnected); !ok || ev.Err != nil {
		t.Fatalf("Expected clean Disconnected, got %+v", ev)
	}

	sent := conn.heartbeats()
	time.Sleep(400 * time.Millisecond)
	if got := conn.heartbeats(); got != sent {
		t.Errorf("Expected no heartbeats after disconnect, got %d more", got-sent)
	}
}
