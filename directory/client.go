package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/network"
	"github.com/wfunc/lobbyclient/timer"
)

var (
	ErrNotConnected     = errors.New("directory: not connected")
	ErrAlreadyConnected = errors.New("directory: already connected")
	ErrClosed           = errors.New("directory: client closed")
)

const DefaultQueueSize = 64

type Options struct {
	URL               string
	ClientID          string
	QueueSize         int
	HeartbeatInterval time.Duration
	DialTimeout       time.Duration
	Dialer            *websocket.Dialer
	// Dial replaces the websocket dial, e.g. with an in-memory connection.
	Dial func(ctx context.Context, url string) (network.Connection, error)
}

// Client talks to the room directory. Requests are fire-and-forget; replies
// and room-list updates arrive on Events.
type Client struct {
	opts        Options
	events      chan Event
	timers      *timer.TimerManager
	conn        network.Connection
	heartbeatID int64
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.Mutex
}

func NewClient(opts Options) *Client {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	return &Client{
		opts:   opts,
		events: make(chan Event, opts.QueueSize),
		timers: timer.NewTimerManager(0),
		done:   make(chan struct{}),
	}
}

// Events is never closed while the client is open; it outlives reconnects.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect dials the directory and introduces the player by nickname.
func (c *Client) Connect(ctx context.Context, nickname string) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.mutex.Lock()
	if c.conn != nil {
		c.mutex.Unlock()
		return ErrAlreadyConnected
	}

	if c.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.DialTimeout)
		defer cancel()
	}

	conn, err := c.dial(ctx)
	if err != nil {
		c.mutex.Unlock()
		return fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	c.conn = conn
	if c.opts.HeartbeatInterval > 0 {
		conn.SetHeartbeat(c.opts.HeartbeatInterval)
		c.heartbeatID = c.timers.AddTimer(c.opts.HeartbeatInterval, c.opts.HeartbeatInterval, c.heartbeat)
	}
	c.mutex.Unlock()

	go c.readLoop(conn)

	return c.send(network.MsgTypeConnect, network.ConnectRequest{
		ClientID: c.opts.ClientID,
		Nickname: nickname,
	})
}

// Disconnect closes the current connection; Events then yields Disconnected{}.
func (c *Client) Disconnect() error {
	conn := c.detach(nil)
	if conn == nil {
		return ErrNotConnected
	}
	return conn.CloseGracefully()
}

// Close disconnects and stops the heartbeat scheduler.
func (c *Client) Close() error {
	err := c.Disconnect()
	if errors.Is(err, ErrNotConnected) {
		err = nil
	}
	c.closeOnce.Do(func() {
		close(c.done)
		c.timers.Stop()
	})
	return err
}

func (c *Client) JoinLobby() error {
	return c.send(network.MsgTypeJoinLobby, nil)
}

func (c *Client) LeaveLobby() error {
	return c.send(network.MsgTypeLeaveLobby, nil)
}

func (c *Client) CreateRoom(name string, maxPlayers int) error {
	return c.send(network.MsgTypeCreateRoom, network.CreateRoomRequest{
		RoomName:   name,
		MaxPlayers: maxPlayers,
	})
}

func (c *Client) JoinRoom(name string) error {
	return c.send(network.MsgTypeJoinRoom, network.RoomRequest{RoomName: name})
}

func (c *Client) JoinRandomRoom() error {
	return c.send(network.MsgTypeJoinRandomRoom, nil)
}

func (c *Client) LeaveRoom() error {
	return c.send(network.MsgTypeLeaveRoom, nil)
}

func (c *Client) send(msgID uint16, payload interface{}) error {
	c.mutex.Lock()
	conn := c.conn
	c.mutex.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := network.Encode(payload)
	if err != nil {
		return err
	}
	return conn.Send(msgID, data)
}

func (c *Client) dial(ctx context.Context) (network.Connection, error) {
	if c.opts.Dial != nil {
		return c.opts.Dial(ctx, c.opts.URL)
	}
	conn, err := network.Dial(ctx, c.opts.URL, c.opts.Dialer)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Client) heartbeat() {
	c.mutex.Lock()
	conn := c.conn
	c.mutex.Unlock()
	if conn == nil {
		return
	}

	if err := conn.Ping(); err != nil {
		logger.Log.Debugf("heartbeat ping not sent: %v", err)
	}
	if err := c.send(network.MsgTypeHeartbeat, nil); err != nil {
		logger.Log.Debugf("heartbeat not sent: %v", err)
	}
}

// detach clears conn if it is still current (or any conn when nil) and
// returns what was cleared.
func (c *Client) detach(conn network.Connection) network.Connection {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil || (conn != nil && c.conn != conn) {
		return nil
	}
	cleared := c.conn
	c.conn = nil
	c.timers.RemoveTimer(c.heartbeatID)
	c.heartbeatID = 0
	return cleared
}

func (c *Client) readLoop(conn network.Connection) {
	var readErr error
	defer func() {
		// A connection already detached by Disconnect ended on purpose.
		if c.detach(conn) == nil {
			readErr = nil
		} else {
			conn.Close()
		}
		c.emit(Disconnected{Err: readErr})
	}()

	c.emit(Connected{})

	for {
		packet, err := conn.ReadPacket()
		if err != nil {
			readErr = err
			return
		}

		ev, err := decodeEvent(packet)
		if err != nil {
			logger.Log.Warnf("Dropping malformed message %d: %v", packet.MsgID, err)
			continue
		}
		if ev == nil {
			continue
		}
		c.emit(ev)
	}
}

// emit blocks while the queue is full; room-list batches must not be dropped.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}
