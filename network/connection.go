// network/connection.go
package network

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrPayloadTooLarge is returned when a payload does not fit the 2-byte length field.
var ErrPayloadTooLarge = errors.New("payload too large")

type Packet struct {
	MsgID  uint16
	Data   []byte
	Length uint16
}

// Connection is one framed link to the directory.
type Connection interface {
	Send(msgID uint16, data []byte) error
	ReadPacket() (*Packet, error)
	SetHeartbeat(interval time.Duration)
	Ping() error
	CloseGracefully() error
	Close() error
}

var _ Connection = (*WSConnection)(nil)

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

// Dial opens a websocket to the directory at url.
func Dial(ctx context.Context, url string, dialer *websocket.Dialer) (*WSConnection, error) {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewWSConnection(conn), nil
}

// EncodePacket 封包: 2字节消息ID + 2字节数据长度 + 数据
func EncodePacket(msgID uint16, data []byte) ([]byte, error) {
	if len(data) > math.MaxUint16 {
		return nil, ErrPayloadTooLarge
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)
	return packet, nil
}

// DecodePacket parses one framed message.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < 4 {
		return nil, io.ErrShortBuffer
	}

	msgID := binary.BigEndian.Uint16(data[0:2])
	length := binary.BigEndian.Uint16(data[2:4])

	if len(data) < 4+int(length) {
		return nil, io.ErrShortBuffer
	}

	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   data[4 : 4+int(length)],
	}, nil
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	packet, err := EncodePacket(msgID, data)
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.extendDeadline()
	return DecodePacket(data)
}

// SetHeartbeat extends the read deadline to twice the interval on every
// received message.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	})
}

func (c *WSConnection) extendDeadline() {
	if c.heartbeat > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.heartbeat * 2))
	}
}

// Ping sends a websocket ping; the pong extends the read deadline.
func (c *WSConnection) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
}

// CloseGracefully sends a normal-closure frame before closing the socket.
func (c *WSConnection) CloseGracefully() error {
	c.sendMutex.Lock()
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.sendMutex.Unlock()
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}
