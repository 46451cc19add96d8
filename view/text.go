package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

// Text prints presenter calls as lines, one per change.
type Text struct {
	w     io.Writer
	rooms *RoomList
	mutex sync.Mutex
}

func NewText(w io.Writer) *Text {
	return &Text{w: w, rooms: NewRoomList(nil)}
}

func (t *Text) ShowPanel(p panel.Panel) {
	t.printf("[panel] %s\n", p)
}

func (t *Text) ApplyRoomOps(ops []roomlist.ViewOp) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.rooms.Apply(ops)
	for _, op := range ops {
		switch op.Kind {
		case roomlist.OpAdd:
			fmt.Fprintf(t.w, "+ %s %s\n", op.Name, PlayersText(op.Room))
		case roomlist.OpUpdate:
			fmt.Fprintf(t.w, "~ %s %s\n", op.Name, PlayersText(op.Room))
		case roomlist.OpRemove:
			fmt.Fprintf(t.w, "- %s\n", op.Name)
		}
	}
}

func (t *Text) SetStatus(state session.ConnectionState) {
	t.printf("[status] %s\n", session.StatusText(state))
}

func (t *Text) Notify(msg string) {
	t.printf("[notice] %s\n", msg)
}

// PrintRooms writes the current list as a table.
func (t *Text) PrintRooms() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.rooms.Len() == 0 {
		fmt.Fprintln(t.w, "No rooms listed.")
		return
	}
	for _, entry := range t.rooms.Entries() {
		fmt.Fprintf(t.w, "%-24s %s\n", entry.NameText, entry.PlayersText)
	}
}

// Printf writes free-form output under the same lock as presenter lines.
func (t *Text) Printf(format string, args ...interface{}) {
	t.printf(format, args...)
}

func (t *Text) printf(format string, args ...interface{}) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	fmt.Fprintf(t.w, format, args...)
}
