// broadcast/broadcast.go
package broadcast

import (
	"sync"

	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

// Presenter mirrors lobby.Presenter; declared here so lobby need not be imported.
type Presenter interface {
	ShowPanel(p panel.Panel)
	ApplyRoomOps(ops []roomlist.ViewOp)
	SetStatus(state session.ConnectionState)
	Notify(msg string)
}

// Fanout 将每次调用按注册顺序转发给所有展示层
type Fanout struct {
	presenters []Presenter
	mutex      sync.RWMutex
}

func NewFanout(presenters ...Presenter) *Fanout {
	f := &Fanout{}
	for _, p := range presenters {
		f.Add(p)
	}
	return f
}

// Add registers p; nil presenters are ignored.
func (f *Fanout) Add(p Presenter) {
	if p == nil {
		return
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.presenters = append(f.presenters, p)
}

func (f *Fanout) Len() int {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return len(f.presenters)
}

func (f *Fanout) ShowPanel(p panel.Panel) {
	for _, presenter := range f.snapshot() {
		presenter.ShowPanel(p)
	}
}

func (f *Fanout) ApplyRoomOps(ops []roomlist.ViewOp) {
	if len(ops) == 0 {
		return
	}
	for _, presenter := range f.snapshot() {
		presenter.ApplyRoomOps(ops)
	}
}

func (f *Fanout) SetStatus(state session.ConnectionState) {
	for _, presenter := range f.snapshot() {
		presenter.SetStatus(state)
	}
}

func (f *Fanout) Notify(msg string) {
	for _, presenter := range f.snapshot() {
		presenter.Notify(msg)
	}
}

func (f *Fanout) snapshot() []Presenter {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return append([]Presenter(nil), f.presenters...)
}
