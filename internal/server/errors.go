package server

import (
	"errors"

	"github.com/gorilla/websocket"

	"github.com/pilcrowe/diceduel/internal/game"
)

var (
	// ErrRoomNotFound is returned when a code does not name a live room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomFull is returned when joining a room that already has two
	// players.
	ErrRoomFull = errors.New("room is full")

	// ErrNameTaken is returned when joining with a name the room's other
	// player already uses.
	ErrNameTaken = errors.New("player name already taken")

	// ErrRoomNotReady rejects commands while the room is still waiting
	// for its second player.
	ErrRoomNotReady = errors.New("room is waiting for a second player")

	// ErrNotYourTurn rejects commands from the player who is not the
	// current turn holder.
	ErrNotYourTurn = errors.New("not your turn")

	ErrConnectionClosed = websocket.ErrCloseSent
)

// errorCode maps a rejection to the snake_case code carried by wire
// error messages.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrNoRollsRemaining):
		return "no_rolls_remaining"
	case errors.Is(err, game.ErrInvalidKeepMask), errors.Is(err, game.ErrMustRollFirst):
		return "invalid_input"
	case errors.Is(err, game.ErrCategoryUnavailable):
		return "category_unavailable"
	case errors.Is(err, game.ErrGameComplete):
		return "game_complete"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrNameTaken):
		return "name_taken"
	case errors.Is(err, ErrRoomNotReady):
		return "room_not_ready"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	default:
		return "server_error"
	}
}
