package panel

import (
	"errors"
	"sync"
)

// Panel 是客户端当前显示的界面
type Panel int

const (
	LoginScreen Panel = iota
	Options
	CreateRoom
	InsideRoom
	RoomList
	JoinRandom
)

var names = [...]string{
	LoginScreen: "login",
	Options:     "options",
	CreateRoom:  "create_room",
	InsideRoom:  "inside_room",
	RoomList:    "room_list",
	JoinRandom:  "join_random",
}

func (p Panel) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return names[p]
}

// Valid reports whether p is one of the declared panels.
func (p Panel) Valid() bool {
	return p >= LoginScreen && int(p) < len(names)
}

// All returns every panel in declaration order.
func All() []Panel {
	panels := make([]Panel, len(names))
	for i := range names {
		panels[i] = Panel(i)
	}
	return panels
}

var (
	// ErrTransitionNotAllowed is returned when a guard rejects a switch.
	ErrTransitionNotAllowed = errors.New("panel transition not allowed")
	// ErrUnknownPanel is returned for values outside the Panel enum.
	ErrUnknownPanel = errors.New("unknown panel")
)

// Machine tracks the active panel. Activate is the only way to change it.
type Machine struct {
	current     Panel
	transitions map[Panel]map[Panel]func() bool // from -> to -> guard
	listeners   []func(from, to Panel)
	mutex       sync.RWMutex
}

func NewMachine(initial Panel) *Machine {
	return &Machine{
		current:     initial,
		transitions: make(map[Panel]map[Panel]func() bool),
	}
}

// Activate switches to p. Listeners run after the switch, outside the lock.
func (m *Machine) Activate(p Panel) error {
	if !p.Valid() {
		return ErrUnknownPanel
	}

	m.mutex.Lock()
	from := m.current
	if from == p {
		m.mutex.Unlock()
		return nil
	}

	// 检查转换条件
	if guards, exists := m.transitions[from]; exists {
		if guard, exists := guards[p]; exists && guard != nil && !guard() {
			m.mutex.Unlock()
			return ErrTransitionNotAllowed
		}
	}

	m.current = p
	listeners := append([]func(from, to Panel){}, m.listeners...)
	m.mutex.Unlock()

	for _, fn := range listeners {
		fn(from, p)
	}
	return nil
}

func (m *Machine) Current() Panel {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

// AddTransition guards the switch from -> to with cond.
func (m *Machine) AddTransition(from, to Panel, cond func() bool) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownPanel
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[Panel]func() bool)
	}
	m.transitions[from][to] = cond
	return nil
}

// OnChange registers fn to run after every successful switch.
func (m *Machine) OnChange(fn func(from, to Panel)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.listeners = append(m.listeners, fn)
}
