// roomlist/reconciler.go
package roomlist

import "sort"

// RoomSummary 是目录服务在某一时刻对一个房间的描述
type RoomSummary struct {
	Name            string `json:"name"`
	IsOpen          bool   `json:"is_open"`
	IsVisible       bool   `json:"is_visible"`
	RemovedFromList bool   `json:"removed_from_list"`
	PlayerCount     int    `json:"player_count"`
	MaxPlayers      int    `json:"max_players"`
}

// Listable reports whether the room may appear in the room list.
func (r RoomSummary) Listable() bool {
	return r.IsOpen && r.IsVisible && !r.RemovedFromList
}

// OpKind 视图操作类型
type OpKind int

const (
	OpAdd OpKind = iota
	OpUpdate
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ViewOp is an instruction for the presentation layer. Room is set for
// OpAdd and OpUpdate; Name is always set.
type ViewOp struct {
	Kind OpKind
	Name string
	Room RoomSummary
}

// Add returns an OpAdd for r.
func Add(r RoomSummary) ViewOp { return ViewOp{Kind: OpAdd, Name: r.Name, Room: r} }

// Update returns an OpUpdate for r.
func Update(r RoomSummary) ViewOp { return ViewOp{Kind: OpUpdate, Name: r.Name, Room: r} }

// Remove returns an OpRemove for the named room.
func Remove(name string) ViewOp { return ViewOp{Kind: OpRemove, Name: name} }

// Reconciler merges incremental room-list batches into a cache of listable
// rooms and reports the resulting view changes.
//
// A Reconciler is not safe for concurrent use. Batches must be applied from a
// single goroutine, in delivery order.
type Reconciler struct {
	cache map[string]RoomSummary
}

// NewReconciler 创建一个空的协调器
func NewReconciler() *Reconciler {
	return &Reconciler{
		cache: make(map[string]RoomSummary),
	}
}

// ApplyUpdateBatch applies updates in order and returns the view operations
// they produce, in the same order. Later entries for the same name win.
func (r *Reconciler) ApplyUpdateBatch(updates []RoomSummary) []ViewOp {
	ops := make([]ViewOp, 0, len(updates))
	for _, room := range updates {
		_, cached := r.cache[room.Name]

		if !room.Listable() {
			if cached {
				delete(r.cache, room.Name)
				ops = append(ops, Remove(room.Name))
			}
			continue
		}

		r.cache[room.Name] = room
		if cached {
			ops = append(ops, Update(room))
		} else {
			ops = append(ops, Add(room))
		}
	}
	return ops
}

// Reset empties the cache and returns a removal for every room that was
// cached, sorted by name.
func (r *Reconciler) Reset() []ViewOp {
	if len(r.cache) == 0 {
		return nil
	}

	names := make([]string, 0, len(r.cache))
	for name := range r.cache {
		names = append(names, name)
	}
	sort.Strings(names)

	ops := make([]ViewOp, 0, len(names))
	for _, name := range names {
		ops = append(ops, Remove(name))
	}
	r.cache = make(map[string]RoomSummary)
	return ops
}

// Len returns the number of cached rooms.
func (r *Reconciler) Len() int {
	return len(r.cache)
}
