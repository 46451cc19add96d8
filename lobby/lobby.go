package lobby

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/wfunc/lobbyclient/directory"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

var (
	ErrInvalidNickname   = errors.New("player name is invalid")
	ErrInvalidMaxPlayers = errors.New("max players must be a number between 0 and 255")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrNotInRoom         = errors.New("not inside a room")
)

const maxPlayersLimit = 255

// Directory is the room directory and connection service.
type Directory interface {
	Connect(ctx context.Context, nickname string) error
	Disconnect() error
	JoinLobby() error
	LeaveLobby() error
	CreateRoom(name string, maxPlayers int) error
	JoinRoom(name string) error
	JoinRandomRoom() error
	LeaveRoom() error
}

// Presenter renders lobby state. Room-list changes reach it only as ViewOps.
type Presenter interface {
	ShowPanel(p panel.Panel)
	ApplyRoomOps(ops []roomlist.ViewOp)
	SetStatus(state session.ConnectionState)
	Notify(msg string)
}

// History records logins and joined rooms.
type History interface {
	RecordLogin(nickname string) error
	RecordJoin(nickname, roomName string, created bool) error
}

// BatchObserver is told about every applied room-list batch.
type BatchObserver interface {
	ObserveBatch(size int, duration time.Duration)
}

type Option func(*Lobby)

func WithHistory(h History) Option {
	return func(l *Lobby) { l.history = h }
}

func WithMetrics(m BatchObserver) Option {
	return func(l *Lobby) { l.metrics = m }
}

// WithRand sets the source used for generated room names.
func WithRand(r *rand.Rand) Option {
	return func(l *Lobby) { l.rand = r }
}

// Lobby drives the client: it turns user actions into directory requests and
// directory events into panel switches and room-list view operations.
//
// Lobby is single-threaded. Run serialises events and submitted actions onto
// one goroutine; the other methods must only be called from that goroutine
// (or, before Run starts, from the goroutine that created the Lobby).
type Lobby struct {
	dir     Directory
	view    Presenter
	history History
	metrics BatchObserver

	session *session.Session
	panels  *panel.Machine
	rooms   *roomlist.Reconciler
	actions chan func()
	rand    *rand.Rand
	ctx     context.Context

	pendingCreate string
	// LeaveLobby requests the directory has not answered yet.
	pendingLeaves int
}

func New(dir Directory, view Presenter, opts ...Option) *Lobby {
	l := &Lobby{
		dir:     dir,
		view:    view,
		session: session.NewSession(),
		panels:  panel.NewMachine(panel.LoginScreen),
		rooms:   roomlist.NewReconciler(),
		actions: make(chan func(), 64),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rand == nil {
		l.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// 未连接时只能停留在登录界面
	for _, p := range panel.All() {
		if p != panel.LoginScreen {
			l.panels.AddTransition(panel.LoginScreen, p, l.session.IsConnected)
		}
	}
	l.panels.OnChange(l.onPanelChange)
	return l
}

func (l *Lobby) Session() *session.Session {
	return l.session
}

func (l *Lobby) Panel() panel.Panel {
	return l.panels.Current()
}

// Start shows the initial panel and status.
func (l *Lobby) Start() {
	l.view.ShowPanel(l.panels.Current())
	l.view.SetStatus(l.session.State())
}

// Run processes events and submitted actions until ctx ends or events closes.
func (l *Lobby) Run(ctx context.Context, events <-chan directory.Event) error {
	l.ctx = ctx
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			l.HandleEvent(ev)
		case fn := <-l.actions:
			fn()
		}
	}
}

// Submit queues fn to run on the Run goroutine.
func (l *Lobby) Submit(fn func()) {
	l.actions <- fn
}

// --- UI actions ---

func (l *Lobby) Login(nickname string) error {
	if nickname == "" {
		logger.Log.Info("Player name is invalid!")
		return ErrInvalidNickname
	}
	if l.session.State() != session.Disconnected {
		return ErrAlreadyConnected
	}

	l.session.Nickname = nickname
	l.setState(session.Connecting)
	if err := l.dir.Connect(l.ctx, nickname); err != nil {
		l.setState(session.Disconnected)
		return fmt.Errorf("connect: %w", err)
	}

	if l.history != nil {
		if err := l.history.RecordLogin(nickname); err != nil {
			logger.Log.Warnf("Failed to record login for %s: %v", nickname, err)
		}
	}
	return nil
}

func (l *Lobby) ShowCreateRoom() error {
	return l.panels.Activate(panel.CreateRoom)
}

// CreateRoom asks the directory for a new room. An empty name gets a random
// "Room NNNN" name.
func (l *Lobby) CreateRoom(name, maxPlayersText string) error {
	maxPlayers, err := strconv.Atoi(strings.TrimSpace(maxPlayersText))
	if err != nil || maxPlayers < 0 || maxPlayers > maxPlayersLimit {
		return fmt.Errorf("%w: %q", ErrInvalidMaxPlayers, maxPlayersText)
	}
	if name == "" {
		name = fmt.Sprintf("Room %d", 1000+l.rand.Intn(9000))
	}

	if err := l.dir.CreateRoom(name, maxPlayers); err != nil {
		return fmt.Errorf("create room %s: %w", name, err)
	}
	l.pendingCreate = name
	return nil
}

func (l *Lobby) Cancel() error {
	return l.panels.Activate(panel.Options)
}

func (l *Lobby) ShowRoomList() error {
	if !l.session.InLobby() {
		if err := l.dir.JoinLobby(); err != nil {
			return fmt.Errorf("join lobby: %w", err)
		}
		l.setState(session.JoiningLobby)
	}
	return l.panels.Activate(panel.RoomList)
}

func (l *Lobby) Back() error {
	l.leaveLobby()
	return l.panels.Activate(panel.Options)
}

func (l *Lobby) JoinRoom(name string) error {
	l.leaveLobby()

	l.setState(session.Joining)
	if err := l.dir.JoinRoom(name); err != nil {
		l.setState(session.ConnectedToMaster)
		l.activate(panel.Options)
		return fmt.Errorf("join room %s: %w", name, err)
	}
	return nil
}

func (l *Lobby) JoinRandomRoom() error {
	if err := l.panels.Activate(panel.JoinRandom); err != nil {
		return err
	}

	l.setState(session.Joining)
	if err := l.dir.JoinRandomRoom(); err != nil {
		l.setState(session.ConnectedToMaster)
		l.panels.Activate(panel.Options)
		return fmt.Errorf("join random room: %w", err)
	}
	return nil
}

func (l *Lobby) LeaveRoom() error {
	if l.session.State() != session.Joined {
		return ErrNotInRoom
	}
	l.setState(session.Leaving)
	return l.dir.LeaveRoom()
}

// Disconnect drops the directory connection; a Disconnected event follows.
func (l *Lobby) Disconnect() error {
	return l.dir.Disconnect()
}

// --- directory events ---

func (l *Lobby) HandleEvent(ev directory.Event) {
	switch e := ev.(type) {
	case directory.Connected:
		logger.Log.Info("Connected to the directory.")
		l.setState(session.Connected)

	case directory.ConnectedToMaster:
		logger.Log.Infof("%s connected to the directory master.", l.session.Nickname)
		l.setState(session.ConnectedToMaster)
		l.activate(panel.Options)

	case directory.JoinedLobby:
		if l.session.State() == session.JoiningLobby {
			l.setState(session.JoinedLobby)
		}

	case directory.LeftLobby:
		// Answer to our own LeaveLobby; a newer JoinLobby may already be in flight.
		if l.pendingLeaves > 0 {
			l.pendingLeaves--
			break
		}
		if l.session.InLobby() {
			l.setState(session.ConnectedToMaster)
		}
		l.resetRooms()

	case directory.RoomListUpdate:
		l.applyRoomList(e.Rooms)

	case directory.CreatedRoom:
		logger.Log.Infof("%s is created.", e.Name)

	case directory.JoinedRoom:
		logger.Log.Infof("%s joined %s", l.session.Nickname, e.Name)
		l.setState(session.Joined)
		l.session.RoomName = e.Name
		if l.history != nil {
			if err := l.history.RecordJoin(l.session.Nickname, e.Name, e.Name == l.pendingCreate); err != nil {
				logger.Log.Warnf("Failed to record join of %s: %v", e.Name, err)
			}
		}
		l.pendingCreate = ""
		l.activate(panel.InsideRoom)

	case directory.LeftRoom:
		l.setState(session.ConnectedToMaster)
		l.activate(panel.Options)

	case directory.OperationFailed:
		logger.Log.Warnf("Directory rejected request: %v", e)
		l.view.Notify(e.Message)
		if l.session.State() == session.Joining {
			l.setState(session.ConnectedToMaster)
			l.activate(panel.Options)
		}
		l.pendingCreate = ""

	case directory.Disconnected:
		if e.Err != nil {
			logger.Log.Warnf("Disconnected: %v", e.Err)
			l.view.Notify("Disconnected: " + e.Err.Error())
		}
		l.pendingLeaves = 0
		l.resetRooms()
		l.setState(session.Disconnected)
		l.activate(panel.LoginScreen)

	default:
		logger.Log.Debugf("Ignoring event %s", ev.EventName())
	}
}

func (l *Lobby) applyRoomList(rooms []roomlist.RoomSummary) {
	if !l.session.InLobby() {
		logger.Log.Debugf("Dropping room list update of %d rooms outside the lobby", len(rooms))
		return
	}

	start := time.Now()
	ops := l.rooms.ApplyUpdateBatch(rooms)
	if l.metrics != nil {
		l.metrics.ObserveBatch(len(rooms), time.Since(start))
	}
	for _, room := range rooms {
		logger.Log.Debugf("Room update: %s (%d/%d)", room.Name, room.PlayerCount, room.MaxPlayers)
	}

	if len(ops) > 0 {
		l.view.ApplyRoomOps(ops)
	}
}

// resetRooms clears the cache and tells the view to destroy every entry.
func (l *Lobby) resetRooms() {
	if ops := l.rooms.Reset(); len(ops) > 0 {
		l.view.ApplyRoomOps(ops)
	}
}

// leaveLobby leaves the lobby if needed. The cache is reset either way.
func (l *Lobby) leaveLobby() {
	if l.session.InLobby() {
		if err := l.dir.LeaveLobby(); err != nil {
			logger.Log.Warnf("Failed to leave lobby: %v", err)
		} else {
			l.pendingLeaves++
		}
		l.setState(session.ConnectedToMaster)
	}
	l.resetRooms()
}

func (l *Lobby) onPanelChange(from, to panel.Panel) {
	if from == panel.RoomList {
		l.leaveLobby()
	}
	l.view.ShowPanel(to)
}

func (l *Lobby) activate(p panel.Panel) {
	if err := l.panels.Activate(p); err != nil {
		logger.Log.Warnf("Cannot show panel %s: %v", p, err)
	}
}

func (l *Lobby) setState(state session.ConnectionState) {
	l.session.SetState(state)
	l.view.SetStatus(state)
}
