package server

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pilcrowe/diceduel/internal/game"
	"github.com/pilcrowe/diceduel/internal/randutil"
	"github.com/pilcrowe/diceduel/internal/roomcode"
)

// codeAttempts bounds the collision-check loop when picking a room
// code; the space holds 9000 codes, so exhausting it means the process
// is effectively full.
const codeAttempts = 10000

// Registry is the process-wide table of live rooms. Its lock guards
// only the table itself (create, lookup, delete); each Room serializes
// its own mutation. The registry is constructed in main and passed
// explicitly to the Server — there is no ambient singleton.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand

	codes  *roomcode.Generator
	clock  quartz.Clock
	logger *log.Logger
}

// NewRegistry creates an empty registry. The rng seeds room codes and
// each room's dice; the clock stamps activity and drives the idle
// sweeper.
func NewRegistry(rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		rng:    rng,
		codes:  roomcode.NewGenerator(rng),
		clock:  clock,
		logger: logger.WithPrefix("registry"),
	}
}

// CreateRoom creates a room with the requesting player as its first
// member, registers the connection, and binds the connection identity.
func (r *Registry) CreateRoom(name string, conn *Connection) (*Room, *RoomSnapshot, error) {
	r.mu.Lock()
	code, err := r.uniqueCodeLocked()
	if err != nil {
		r.mu.Unlock()
		return nil, nil, err
	}
	room := newRoom(code, randutil.New(int64(r.rng.Uint64())), r.clock.Now())
	r.rooms[code] = room
	r.mu.Unlock()

	if err := room.addPlayer(name, conn, r.clock.Now()); err != nil {
		r.remove(code)
		return nil, nil, err
	}
	conn.bind(name, code)

	r.logger.Info("Room created", "code", code, "player", name)
	return room, room.Snapshot(), nil
}

// JoinRoom adds a player to an existing room, registers the
// connection, and binds the connection identity. A room with two
// players is ready.
func (r *Registry) JoinRoom(code, name string, conn *Connection) (*Room, *RoomSnapshot, error) {
	room, err := r.lookup(code)
	if err != nil {
		return nil, nil, err
	}
	if err := room.addPlayer(name, conn, r.clock.Now()); err != nil {
		return nil, nil, err
	}
	conn.bind(name, code)

	r.logger.Info("Player joined room", "code", code, "player", name)
	return room, room.Snapshot(), nil
}

// Roll applies a roll command and returns the room with its resulting
// snapshot.
func (r *Registry) Roll(code, player string, keep []bool) (*Room, *RoomSnapshot, error) {
	room, err := r.lookup(code)
	if err != nil {
		return nil, nil, err
	}
	if err := room.roll(player, keep, r.clock.Now()); err != nil {
		return nil, nil, err
	}
	return room, room.Snapshot(), nil
}

// ScoreCategory applies a score command and returns the room with its
// resulting snapshot. Turn advance happens only here, never on roll.
func (r *Registry) ScoreCategory(code, player string, cat game.Category) (*Room, *RoomSnapshot, error) {
	room, err := r.lookup(code)
	if err != nil {
		return nil, nil, err
	}
	if err := room.scoreCategory(player, cat, r.clock.Now()); err != nil {
		return nil, nil, err
	}
	return room, room.Snapshot(), nil
}

// Snapshot serves a state request with a consistent copy of the room.
func (r *Registry) Snapshot(code string) (*Room, *RoomSnapshot, error) {
	room, err := r.lookup(code)
	if err != nil {
		return nil, nil, err
	}
	return room, room.Snapshot(), nil
}

// Broadcast pushes a snapshot to every connection registered to the
// room. Sends happen outside any lock against a copied connection
// list; a connection whose send fails is evicted, and the room is
// deleted once its connection set empties.
func (r *Registry) Broadcast(room *Room, snap *RoomSnapshot) {
	msg, err := NewMessage(MessageTypeUpdate, snap)
	if err != nil {
		r.logger.Error("Failed to encode snapshot", "code", room.Code(), "error", err)
		return
	}

	for _, conn := range room.connections() {
		if err := conn.Send(msg); err != nil {
			r.logger.Warn("Evicting unreachable connection",
				"code", room.Code(), "player", conn.Player(), "error", err)
			r.evict(room, conn)
		}
	}
}

// Leave handles a disconnect: the connection is removed from its bound
// room, and the room is torn down when no connections remain.
func (r *Registry) Leave(conn *Connection) {
	code := conn.Room()
	if code == "" {
		return
	}
	room, err := r.lookup(code)
	if err != nil {
		return
	}
	r.evict(room, conn)
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// StartSweeper closes rooms idle past ttl, checking every interval
// until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, ttl, interval time.Duration) {
	var tick func()
	tick = func() {
		if ctx.Err() != nil {
			return
		}
		r.CloseIdle(r.clock.Now().Add(-ttl))
		r.clock.AfterFunc(interval, tick)
	}
	r.clock.AfterFunc(interval, tick)
}

// CloseIdle deletes every room with no activity since cutoff, closing
// its connections. It returns how many rooms were closed.
func (r *Registry) CloseIdle(cutoff time.Time) int {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	closed := 0
	for _, room := range rooms {
		if !room.idleSince(cutoff) {
			continue
		}
		for _, conn := range room.connections() {
			_ = conn.Close()
		}
		r.remove(room.Code())
		r.logger.Info("Closed idle room", "code", room.Code())
		closed++
	}
	return closed
}

// evict removes a connection from a room, deleting the room if it was
// the last one.
func (r *Registry) evict(room *Room, conn *Connection) {
	if room.detach(conn) {
		r.remove(room.Code())
	}
}

func (r *Registry) remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; ok {
		delete(r.rooms, code)
		r.logger.Info("Room deleted", "code", code)
	}
}

func (r *Registry) lookup(code string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return room, nil
}

// uniqueCodeLocked draws codes until one misses every live room.
func (r *Registry) uniqueCodeLocked() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := r.codes.Generate()
		if _, live := r.rooms[code]; !live {
			return code, nil
		}
	}
	return "", fmt.Errorf("room code space exhausted")
}
