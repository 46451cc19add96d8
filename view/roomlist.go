package view

import (
	"fmt"

	"github.com/wfunc/lobbyclient/roomlist"
)

// Entry is the view-model of one listed room.
type Entry struct {
	RoomName    string
	NameText    string
	PlayersText string
	Join        func()
}

// RoomList holds one Entry per listed room, in the order rooms appeared.
// It changes only through Apply and Clear.
type RoomList struct {
	entries map[string]*Entry
	order   []string
	join    func(roomName string)
}

// NewRoomList binds every created entry's Join to join(roomName).
func NewRoomList(join func(roomName string)) *RoomList {
	return &RoomList{
		entries: make(map[string]*Entry),
		join:    join,
	}
}

func PlayersText(r roomlist.RoomSummary) string {
	return fmt.Sprintf("%d / %d", r.PlayerCount, r.MaxPlayers)
}

func (l *RoomList) Apply(ops []roomlist.ViewOp) {
	for _, op := range ops {
		switch op.Kind {
		case roomlist.OpAdd:
			l.add(op.Room)
		case roomlist.OpUpdate:
			if entry, ok := l.entries[op.Name]; ok {
				entry.NameText = op.Room.Name
				entry.PlayersText = PlayersText(op.Room)
			} else {
				l.add(op.Room)
			}
		case roomlist.OpRemove:
			l.remove(op.Name)
		}
	}
}

func (l *RoomList) add(r roomlist.RoomSummary) {
	if _, ok := l.entries[r.Name]; ok {
		l.remove(r.Name)
	}

	name := r.Name
	entry := &Entry{
		RoomName:    name,
		NameText:    name,
		PlayersText: PlayersText(r),
		Join: func() {
			if l.join != nil {
				l.join(name)
			}
		},
	}
	l.entries[name] = entry
	l.order = append(l.order, name)
}

func (l *RoomList) remove(name string) {
	if _, ok := l.entries[name]; !ok {
		return
	}
	delete(l.entries, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Clear destroys every entry.
func (l *RoomList) Clear() {
	l.entries = make(map[string]*Entry)
	l.order = nil
}

func (l *RoomList) Get(name string) (*Entry, bool) {
	entry, ok := l.entries[name]
	return entry, ok
}

// Entries returns the entries in display order.
func (l *RoomList) Entries() []*Entry {
	entries := make([]*Entry, 0, len(l.order))
	for _, name := range l.order {
		entries = append(entries, l.entries[name])
	}
	return entries
}

func (l *RoomList) Len() int {
	return len(l.order)
}
