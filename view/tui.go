package view

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/wfunc/lobbyclient/panel"
	"github.com/wfunc/lobbyclient/roomlist"
	"github.com/wfunc/lobbyclient/session"
)

// Controller receives the user's button presses.
type Controller interface {
	Login(nickname string)
	ShowCreateRoom()
	CreateRoom(name, maxPlayers string)
	Cancel()
	ShowRoomList()
	Back()
	JoinRoom(name string)
	JoinRandomRoom()
	LeaveRoom()
}

const (
	labelPlayerName = "Player Name"
	labelRoomName   = "Room Name"
	labelMaxPlayers = "Max Players"
)

// TUI is the terminal front end: one page per panel above a status bar.
type TUI struct {
	app    *tview.Application
	pages  *tview.Pages
	status *tview.TextView
	notice *tview.TextView
	list   *tview.List
	rooms  *RoomList
	focus  map[panel.Panel]tview.Primitive
	ctrl   Controller

	// Updates are applied inline until Run starts and dropped once it returns.
	started bool
	stopped chan struct{}
	mutex   sync.Mutex
}

func NewTUI(ctrl Controller, nickname string) *TUI {
	t := &TUI{
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		status:  tview.NewTextView(),
		notice:  tview.NewTextView().SetDynamicColors(true),
		list:    tview.NewList(),
		focus:   make(map[panel.Panel]tview.Primitive),
		ctrl:    ctrl,
		stopped: make(chan struct{}),
	}
	t.rooms = NewRoomList(ctrl.JoinRoom)
	t.status.SetText(session.StatusText(session.Disconnected))

	t.addPage(panel.LoginScreen, t.loginPage(nickname))
	t.addPage(panel.Options, t.optionsPage())
	t.addPage(panel.CreateRoom, t.createRoomPage())
	t.addPage(panel.InsideRoom, t.insideRoomPage())
	t.addPage(panel.RoomList, t.roomListPage())
	t.addPage(panel.JoinRandom, t.joinRandomPage())
	t.pages.SwitchToPage(panel.LoginScreen.String())

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.pages, 0, 1, true).
		AddItem(t.notice, 1, 0, false).
		AddItem(t.status, 1, 0, false)

	t.app.SetRoot(root, true).SetFocus(t.focus[panel.LoginScreen])
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			t.app.Stop()
			return nil
		}
		return event
	})
	return t
}

// Run blocks until the user quits. It must be called at most once.
func (t *TUI) Run() error {
	t.mutex.Lock()
	t.started = true
	t.mutex.Unlock()

	defer close(t.stopped)
	return t.app.Run()
}

func (t *TUI) Stop() {
	t.app.Stop()
}

// Done is closed once Run has returned.
func (t *TUI) Done() <-chan struct{} {
	return t.stopped
}

func (t *TUI) ShowPanel(p panel.Panel) {
	t.update(func() {
		t.pages.SwitchToPage(p.String())
		if focus, ok := t.focus[p]; ok {
			t.app.SetFocus(focus)
		}
	})
}

func (t *TUI) ApplyRoomOps(ops []roomlist.ViewOp) {
	t.update(func() {
		t.rooms.Apply(ops)
		t.renderRooms()
	})
}

func (t *TUI) SetStatus(state session.ConnectionState) {
	t.update(func() {
		t.status.SetText(session.StatusText(state))
	})
}

func (t *TUI) Notify(msg string) {
	t.update(func() {
		t.notice.SetText("[yellow]" + tview.Escape(msg))
	})
}

// update runs fn on the event loop and waits for it. QueueUpdateDraw only
// returns once the loop has run fn, so the wait also ends when Run returns.
func (t *TUI) update(fn func()) {
	select {
	case <-t.stopped:
		return
	default:
	}

	t.mutex.Lock()
	if !t.started {
		fn()
		t.mutex.Unlock()
		return
	}
	t.mutex.Unlock()

	done := make(chan struct{})
	go t.app.QueueUpdateDraw(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-t.stopped:
	}
}

func (t *TUI) renderRooms() {
	t.list.Clear()
	for _, entry := range t.rooms.Entries() {
		t.list.AddItem(entry.NameText, entry.PlayersText, 0, entry.Join)
	}
}

func (t *TUI) addPage(p panel.Panel, page tview.Primitive) {
	t.pages.AddPage(p.String(), page, true, false)
	if _, ok := t.focus[p]; !ok {
		t.focus[p] = page
	}
}

func (t *TUI) loginPage(nickname string) tview.Primitive {
	form := tview.NewForm()
	form.AddInputField(labelPlayerName, nickname, 24, nil, nil)
	form.AddButton("Login", func() {
		t.ctrl.Login(inputText(form, labelPlayerName))
	})
	form.AddButton("Quit", t.app.Stop)
	form.SetBorder(true).SetTitle(" Login ")
	return form
}

func (t *TUI) optionsPage() tview.Primitive {
	menu := tview.NewList().
		AddItem("Create Room", "", 'c', t.ctrl.ShowCreateRoom).
		AddItem("Show Room List", "", 'l', t.ctrl.ShowRoomList).
		AddItem("Join Random Room", "", 'r', t.ctrl.JoinRandomRoom).
		AddItem("Quit", "", 'q', t.app.Stop)
	menu.ShowSecondaryText(false)
	menu.SetBorder(true).SetTitle(" Game Options ")
	return menu
}

func (t *TUI) createRoomPage() tview.Primitive {
	form := tview.NewForm()
	form.AddInputField(labelRoomName, "", 24, nil, nil)
	form.AddInputField(labelMaxPlayers, "4", 4, tview.InputFieldInteger, nil)
	form.AddButton("Create", func() {
		t.ctrl.CreateRoom(inputText(form, labelRoomName), inputText(form, labelMaxPlayers))
	})
	form.AddButton("Cancel", t.ctrl.Cancel)
	form.SetCancelFunc(t.ctrl.Cancel)
	form.SetBorder(true).SetTitle(" Create Room ")
	return form
}

func (t *TUI) insideRoomPage() tview.Primitive {
	form := tview.NewForm()
	form.AddTextView("", "You are inside the room.", 40, 1, false, false)
	form.AddButton("Leave Room", t.ctrl.LeaveRoom)
	form.SetBorder(true).SetTitle(" Inside Room ")
	return form
}

func (t *TUI) roomListPage() tview.Primitive {
	t.list.SetBorder(true).SetTitle(" Rooms (Enter: join, Esc: back) ")
	t.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			t.ctrl.Back()
			return nil
		}
		return event
	})
	return t.list
}

func (t *TUI) joinRandomPage() tview.Primitive {
	form := tview.NewForm()
	form.AddTextView("", "Joining a random room...", 40, 1, false, false)
	form.AddButton("Cancel", t.ctrl.Cancel)
	form.SetBorder(true).SetTitle(" Join Random Room ")
	return form
}

func inputText(form *tview.Form, label string) string {
	if field, ok := form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}
