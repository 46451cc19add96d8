package lobby

import (
	"github.com/wfunc/lobbyclient/logger"
)

// Actions forwards UI input to a running Lobby. Every call is queued onto the
// Run goroutine; failures are shown to the player as notices.
type Actions struct {
	l *Lobby
}

func (l *Lobby) Actions() *Actions {
	return &Actions{l: l}
}

func (a *Actions) Login(nickname string) {
	a.do(func() error { return a.l.Login(nickname) })
}

func (a *Actions) ShowCreateRoom() {
	a.do(a.l.ShowCreateRoom)
}

func (a *Actions) CreateRoom(name, maxPlayers string) {
	a.do(func() error { return a.l.CreateRoom(name, maxPlayers) })
}

func (a *Actions) Cancel() {
	a.do(a.l.Cancel)
}

func (a *Actions) ShowRoomList() {
	a.do(a.l.ShowRoomList)
}

func (a *Actions) Back() {
	a.do(a.l.Back)
}

func (a *Actions) JoinRoom(name string) {
	a.do(func() error { return a.l.JoinRoom(name) })
}

func (a *Actions) JoinRandomRoom() {
	a.do(a.l.JoinRandomRoom)
}

func (a *Actions) LeaveRoom() {
	a.do(a.l.LeaveRoom)
}

func (a *Actions) do(fn func() error) {
	a.l.Submit(func() {
		if err := fn(); err != nil {
			logger.Log.Warnf("Action failed: %v", err)
			a.l.view.Notify(err.Error())
		}
	})
}
