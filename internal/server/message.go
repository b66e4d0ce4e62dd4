package server

import (
	"encoding/json"
	"time"

	"github.com/pilcrowe/diceduel/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateData struct {
	Name string `json:"name"`
}

type JoinData struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CommandData carries a roll or score command. Room and Player must
// match the identity bound to the sending connection.
type CommandData struct {
	Room     string `json:"room"`
	Player   string `json:"player"`
	Action   string `json:"action"`
	Keep     []bool `json:"keep,omitempty"`
	Category string `json:"category,omitempty"`
}

// Server → Client Messages

type CreatedData struct {
	Code string `json:"code"`
}

type JoinedData struct {
	Code string `json:"code"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlayerSnapshot is one player's half of a room snapshot: dice, roll
// budget, committed scores, hints for the open categories, and the
// running totals.
type PlayerSnapshot struct {
	Dice              [game.NumDice]int `json:"dice"`
	RollsRemaining    int               `json:"rolls_remaining"`
	TurnNumber        int               `json:"turn_number"`
	Complete          bool              `json:"complete"`
	Scores            map[string]int    `json:"scores"`
	Possible          map[string]int    `json:"possible"`
	UpperTotal        int               `json:"upper_total"`
	UpperBonus        int               `json:"upper_bonus"`
	LowerTotal        int               `json:"lower_total"`
	YahtzeeBonusCount int               `json:"yahtzee_bonus_count"`
	YahtzeeBonusTotal int               `json:"yahtzee_bonus_total"`
	GrandTotal        int               `json:"grand_total"`
}

// RoomSnapshot is the full immutable view of a room pushed to every
// registered connection on each update. Winner is non-empty exactly
// when the game is over.
type RoomSnapshot struct {
	Code          string                    `json:"code"`
	Players       []string                  `json:"players"`
	Ready         bool                      `json:"ready"`
	TurnIndex     int                       `json:"turn_index"`
	CurrentPlayer string                    `json:"current_player"`
	Games         map[string]PlayerSnapshot `json:"games"`
	Winner        string                    `json:"winner,omitempty"`
	FinalScores   map[string]int            `json:"final_scores,omitempty"`
}

// playerSnapshotFromGame builds the wire view of one player's game.
func playerSnapshotFromGame(g *game.PlayerGame) PlayerSnapshot {
	sc := g.Scorecard()
	faces := g.Dice().Faces()

	scores := make(map[string]int)
	for _, cat := range game.Categories() {
		if v, ok := sc.Committed(cat); ok {
			scores[cat.String()] = v
		}
	}
	possible := make(map[string]int)
	for cat, v := range sc.PossibleScores(faces) {
		possible[cat.String()] = v
	}

	return PlayerSnapshot{
		Dice:              faces,
		RollsRemaining:    g.Dice().RollsRemaining(),
		TurnNumber:        g.Turn(),
		Complete:          g.Complete(),
		Scores:            scores,
		Possible:          possible,
		UpperTotal:        sc.UpperTotal(),
		UpperBonus:        sc.UpperBonus(),
		LowerTotal:        sc.LowerTotal(),
		YahtzeeBonusCount: sc.YahtzeeBonusCount(),
		YahtzeeBonusTotal: sc.YahtzeeBonusTotal(),
		GrandTotal:        sc.GrandTotal(),
	}
}
