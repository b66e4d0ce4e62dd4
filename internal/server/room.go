package server

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/pilcrowe/diceduel/internal/game"
)

// maxPlayers is the room capacity; rooms are strictly two-player.
const maxPlayers = 2

// Room holds one two-player session: the ordered player list, each
// player's game, the turn cursor, and the set of live connections.
//
// All mutation happens under the room's own mutex; the registry lock is
// never held at the same time, so commands against different rooms do
// not contend. Snapshots are value copies taken under the mutex and
// serialized outside it.
type Room struct {
	code string

	mu          sync.Mutex
	players     []string
	games       map[string]*game.PlayerGame
	turnIndex   int
	winner      string
	finalScores map[string]int
	conns       map[*Connection]struct{}
	rng         *rand.Rand
	lastActive  time.Time
}

func newRoom(code string, rng *rand.Rand, now time.Time) *Room {
	return &Room{
		code:       code,
		games:      make(map[string]*game.PlayerGame),
		conns:      make(map[*Connection]struct{}),
		rng:        rng,
		lastActive: now,
	}
}

// Code returns the room's 4-digit code.
func (r *Room) Code() string {
	return r.code
}

// addPlayer appends a player, creates their game, and registers the
// player's connection.
func (r *Room) addPlayer(name string, conn *Connection, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= maxPlayers {
		return ErrRoomFull
	}
	if _, taken := r.games[name]; taken {
		return ErrNameTaken
	}

	r.players = append(r.players, name)
	r.games[name] = game.NewPlayerGame(r.rng)
	r.conns[conn] = struct{}{}
	r.lastActive = now
	return nil
}

// detach removes a connection, reporting whether the room is now empty.
func (r *Room) detach(conn *Connection) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
	return len(r.conns) == 0
}

// connections returns a copy of the live connection set for use outside
// the room lock.
func (r *Room) connections() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]*Connection, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// roll applies a roll command for the named player.
func (r *Room) roll(player string, keep []bool, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkTurnLocked(player); err != nil {
		return err
	}
	if _, err := r.games[player].Roll(keep); err != nil {
		return err
	}
	r.lastActive = now
	return nil
}

// scoreCategory applies a score command for the named player and
// advances the turn cursor on success. When the last scorecard fills,
// the winner and final scores freeze.
func (r *Room) scoreCategory(player string, cat game.Category, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkTurnLocked(player); err != nil {
		return err
	}
	if _, err := r.games[player].Score(cat); err != nil {
		return err
	}
	r.turnIndex = (r.turnIndex + 1) % len(r.players)
	r.lastActive = now

	for _, g := range r.games {
		if !g.Complete() {
			return nil
		}
	}
	r.finishLocked()
	return nil
}

// checkTurnLocked enforces the coordinator's turn discipline: the room
// must be ready, the game still running, and the player the current
// turn holder.
func (r *Room) checkTurnLocked(player string) error {
	if len(r.players) < maxPlayers {
		return ErrRoomNotReady
	}
	if r.winner != "" {
		return game.ErrGameComplete
	}
	if r.players[r.turnIndex] != player {
		return ErrNotYourTurn
	}
	return nil
}

// finishLocked computes the winner and freezes the final scores. Ties
// go to the earlier joiner.
func (r *Room) finishLocked() {
	r.finalScores = make(map[string]int, len(r.players))
	best := -1
	for _, name := range r.players {
		total := r.games[name].Scorecard().GrandTotal()
		r.finalScores[name] = total
		if total > best {
			best = total
			r.winner = name
		}
	}
}

// Snapshot builds an immutable copy of the room state under the room
// mutex. Callers serialize and send it without any lock held.
func (r *Room) Snapshot() *RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &RoomSnapshot{
		Code:      r.code,
		Players:   append([]string(nil), r.players...),
		Ready:     len(r.players) == maxPlayers,
		TurnIndex: r.turnIndex,
		Games:     make(map[string]PlayerSnapshot, len(r.games)),
		Winner:    r.winner,
	}
	if snap.Ready && r.winner == "" {
		snap.CurrentPlayer = r.players[r.turnIndex]
	}
	for name, g := range r.games {
		snap.Games[name] = playerSnapshotFromGame(g)
	}
	if r.finalScores != nil {
		snap.FinalScores = make(map[string]int, len(r.finalScores))
		for name, total := range r.finalScores {
			snap.FinalScores[name] = total
		}
	}
	return snap
}

// idleSince reports whether the room has seen no activity since cutoff.
func (r *Room) idleSince(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive.Before(cutoff)
}
