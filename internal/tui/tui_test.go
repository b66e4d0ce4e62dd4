package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilcrowe/diceduel/internal/server"
)

func init() {
	// Plain output so View assertions see no ANSI escapes.
	lipgloss.SetColorProfile(termenv.Ascii)
}

// fakeGateway records the calls the model makes.
type fakeGateway struct {
	calls []string
	keep  []bool
}

func (f *fakeGateway) Create(name string) error       { f.calls = append(f.calls, "create "+name); return nil }
func (f *fakeGateway) Join(name, code string) error   { f.calls = append(f.calls, "join "+name+" "+code); return nil }
func (f *fakeGateway) Roll(keep []bool) error         { f.calls = append(f.calls, "roll"); f.keep = keep; return nil }
func (f *fakeGateway) Score(category string) error    { f.calls = append(f.calls, "score "+category); return nil }
func (f *fakeGateway) RequestState() error            { f.calls = append(f.calls, "state"); return nil }

func newTestModel(t *testing.T) (*Model, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{}
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	m := NewModel(gw, "alice", logger)
	m.width = 100
	m.height = 40
	return m, gw
}

func testSnapshot(currentPlayer string) *server.RoomSnapshot {
	games := map[string]server.PlayerSnapshot{
		"alice": {
			Dice:           [5]int{3, 3, 4, 5, 6},
			RollsRemaining: 2,
			TurnNumber:     2,
			Scores:         map[string]int{"chance": 21},
			Possible:       map[string]int{"threes": 6, "full_house": 0},
			GrandTotal:     21,
		},
		"bob": {
			Dice:           [5]int{1, 1, 2, 2, 3},
			RollsRemaining: 2,
			TurnNumber:     1,
			Scores:         map[string]int{},
			Possible:       map[string]int{},
		},
	}
	return &server.RoomSnapshot{
		Code:          "4321",
		Players:       []string{"alice", "bob"},
		Ready:         true,
		CurrentPlayer: currentPlayer,
		Games:         games,
	}
}

func TestParseHolds(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []bool
		wantErr bool
	}{
		{"no holds", nil, nil, false},
		{"single", []string{"1"}, []bool{true, false, false, false, false}, false},
		{"several", []string{"1", "3", "5"}, []bool{true, false, true, false, true}, false},
		{"all", []string{"1", "2", "3", "4", "5"}, []bool{true, true, true, true, true}, false},
		{"duplicate is harmless", []string{"2", "2"}, []bool{false, true, false, false, false}, false},
		{"zero", []string{"0"}, nil, true},
		{"out of range", []string{"6"}, nil, true},
		{"not a number", []string{"two"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHolds(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelCommands(t *testing.T) {
	m, gw := newTestModel(t)

	m.processCommand("create")
	m.processCommand("/join 4321")
	m.processCommand("roll 1 3")
	m.processCommand("score chance")
	m.processCommand("state")

	assert.Equal(t, []string{
		"create alice",
		"join alice 4321",
		"roll",
		"score chance",
		"state",
	}, gw.calls)
	assert.Equal(t, []bool{true, false, true, false, false}, gw.keep)
}

func TestModelRejectsBadCommands(t *testing.T) {
	m, gw := newTestModel(t)

	m.processCommand("join")
	m.processCommand("roll 9")
	m.processCommand("score")
	m.processCommand("score flush")
	m.processCommand("launch")

	assert.Empty(t, gw.calls)
	logText := strings.Join(m.GameLog(), "\n")
	assert.Contains(t, logText, "Usage: join CODE")
	assert.Contains(t, logText, "hold positions")
	assert.Contains(t, logText, `Unknown category "flush"`)
	assert.Contains(t, logText, `Unknown command "launch"`)
}

func TestModelViewBeforeJoin(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "Dice Duel")
	assert.Contains(t, view, "not in a room")
}

func TestModelViewGameBoard(t *testing.T) {
	m, _ := newTestModel(t)
	m.applySnapshot(testSnapshot("alice"))

	view := m.View()
	assert.Contains(t, view, "your turn")
	assert.Contains(t, view, "Dice:")
	assert.Contains(t, view, "2 roll(s) left")
	assert.Contains(t, view, "chance")
	assert.Contains(t, view, "full_house")
	// alice's committed chance and bob's empty slot share a row.
	assert.Contains(t, view, "21")
	assert.Contains(t, view, "-")
	assert.Contains(t, view, "total")
}

func TestModelViewOpponentTurn(t *testing.T) {
	m, _ := newTestModel(t)
	m.applySnapshot(testSnapshot("bob"))

	view := m.View()
	assert.Contains(t, view, "waiting for bob")
	assert.NotContains(t, view, "your turn")
}

func TestModelLogsTransitions(t *testing.T) {
	m, _ := newTestModel(t)

	snap := testSnapshot("alice")
	m.applySnapshot(snap)

	done := testSnapshot("")
	done.Winner = "bob"
	done.CurrentPlayer = ""
	done.FinalScores = map[string]int{"alice": 180, "bob": 205}
	m.applySnapshot(done)

	logText := strings.Join(m.GameLog(), "\n")
	assert.Contains(t, logText, "alice vs bob")
	assert.Contains(t, logText, "game on")
	assert.Contains(t, logText, "Game over: bob wins")
	assert.Contains(t, logText, "bob: 205, alice: 180")
}

func TestModelErrorAndDisconnect(t *testing.T) {
	m, _ := newTestModel(t)

	model, _ := m.Update(ServerErrorMsg{Code: "not_your_turn", Message: "not your turn"})
	m = model.(*Model)
	model, _ = m.Update(DisconnectedMsg{})
	m = model.(*Model)

	logText := strings.Join(m.GameLog(), "\n")
	assert.Contains(t, logText, "not_your_turn")
	assert.Contains(t, logText, "Connection to server lost")
	assert.Contains(t, m.View(), "disconnected")
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = model.(*Model)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestSortedFinalScores(t *testing.T) {
	lines := SortedFinalScores(map[string]int{"alice": 180, "bob": 205})
	assert.Equal(t, []string{"bob: 205", "alice: 180"}, lines)

	// Ties order by name for a stable display.
	lines = SortedFinalScores(map[string]int{"zoe": 100, "amy": 100})
	assert.Equal(t, []string{"amy: 100", "zoe: 100"}, lines)
}
