package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pilcrowe/diceduel/internal/game"
	"github.com/pilcrowe/diceduel/internal/server"
)

// Gateway is the slice of the network client the TUI drives. It is an
// interface so tests can script the wire without a server.
type Gateway interface {
	Create(name string) error
	Join(name, code string) error
	Roll(keep []bool) error
	Score(category string) error
	RequestState() error
}

// Messages pushed into the program from the network side.

// SnapshotMsg carries a fresh room snapshot.
type SnapshotMsg struct {
	Snapshot *server.RoomSnapshot
}

// RoomCodeMsg reports the code of the room we created or joined.
type RoomCodeMsg struct {
	Code string
}

// ServerErrorMsg carries a rejection from the server.
type ServerErrorMsg struct {
	Code    string
	Message string
}

// NoticeMsg carries an informational line for the log.
type NoticeMsg struct {
	Text string
}

// DisconnectedMsg reports that the server connection dropped.
type DisconnectedMsg struct{}

// Model is the Bubble Tea model for the dice game client.
type Model struct {
	gateway    Gateway
	logger     *log.Logger
	playerName string

	logViewport viewport.Model
	input       textinput.Model

	roomCode     string
	snapshot     *server.RoomSnapshot
	gameLog      []string
	disconnected bool
	quitting     bool

	width       int
	height      int
	initialized bool
}

// NewModel creates the TUI model. The player name is fixed at startup;
// commands typed at the prompt drive the gateway.
func NewModel(gateway Gateway, playerName string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "create | join CODE | roll [dice to hold] | score CATEGORY | quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 80
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		gateway:     gateway,
		logger:      logger.WithPrefix("tui"),
		playerName:  playerName,
		logViewport: vp,
		input:       ti,
		gameLog:     []string{},
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)

	case RoomCodeMsg:
		m.roomCode = msg.Code
		m.addLog(SuccessStyle.Render(fmt.Sprintf("Room %s — share this code with your opponent", msg.Code)))

	case ServerErrorMsg:
		m.addLog(ErrorStyle.Render(fmt.Sprintf("Error (%s): %s", msg.Code, msg.Message)))

	case NoticeMsg:
		m.addLog(InfoStyle.Render(msg.Text))

	case DisconnectedMsg:
		m.disconnected = true
		m.addLog(ErrorStyle.Render("Connection to server lost"))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmd := m.processCommand(line); cmd != nil {
				return m, cmd
			}
		case "up", "pgup":
			m.logViewport.ScrollUp(1)
		case "down", "pgdown":
			m.logViewport.ScrollDown(1)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processCommand parses one line of input and drives the gateway.
func (m *Model) processCommand(line string) tea.Cmd {
	parts := strings.Fields(strings.ToLower(line))
	if len(parts) == 0 {
		return nil
	}

	// Slash-prefixed commands work too.
	parts[0] = strings.TrimPrefix(parts[0], "/")

	var err error
	switch parts[0] {
	case "quit", "exit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)

	case "create":
		err = m.gateway.Create(m.playerName)

	case "join":
		if len(parts) != 2 {
			m.addLog(ErrorStyle.Render("Usage: join CODE"))
			return nil
		}
		err = m.gateway.Join(m.playerName, parts[1])

	case "roll":
		var keep []bool
		keep, err = ParseHolds(parts[1:])
		if err != nil {
			m.addLog(ErrorStyle.Render(err.Error()))
			return nil
		}
		err = m.gateway.Roll(keep)

	case "score":
		if len(parts) != 2 {
			m.addLog(ErrorStyle.Render("Usage: score CATEGORY (e.g. score full_house)"))
			return nil
		}
		if _, perr := game.ParseCategory(parts[1]); perr != nil {
			m.addLog(ErrorStyle.Render(fmt.Sprintf("Unknown category %q", parts[1])))
			return nil
		}
		err = m.gateway.Score(parts[1])

	case "state":
		err = m.gateway.RequestState()

	default:
		m.addLog(ErrorStyle.Render(fmt.Sprintf("Unknown command %q", parts[0])))
		return nil
	}

	if err != nil {
		m.logger.Error("Command failed", "command", parts[0], "error", err)
		m.addLog(ErrorStyle.Render(fmt.Sprintf("Command failed: %v", err)))
	}
	return nil
}

// ParseHolds converts 1-based die positions into a keep mask. No
// positions means reroll everything.
func ParseHolds(args []string) ([]bool, error) {
	if len(args) == 0 {
		return nil, nil
	}

	keep := make([]bool, game.NumDice)
	for _, arg := range args {
		pos, err := strconv.Atoi(arg)
		if err != nil || pos < 1 || pos > game.NumDice {
			return nil, fmt.Errorf("hold positions must be numbers 1-%d, got %q", game.NumDice, arg)
		}
		keep[pos-1] = true
	}
	return keep, nil
}

// applySnapshot stores the new room state and logs the transitions a
// player cares about.
func (m *Model) applySnapshot(snap *server.RoomSnapshot) {
	prev := m.snapshot
	m.snapshot = snap
	m.roomCode = snap.Code

	if prev == nil || len(prev.Players) < len(snap.Players) {
		m.addLog(InfoStyle.Render("Players: " + strings.Join(snap.Players, " vs ")))
	}
	if snap.Ready && (prev == nil || !prev.Ready) {
		m.addLog(SuccessStyle.Render("Both players in — game on!"))
	}
	if snap.Winner != "" && (prev == nil || prev.Winner == "") {
		m.addLog(TurnStyle.Render(m.winnerLine(snap)))
	}
}

func (m *Model) winnerLine(snap *server.RoomSnapshot) string {
	verb := "wins"
	if snap.Winner == m.playerName {
		verb = "wins — that's you!"
	}
	standings := strings.Join(SortedFinalScores(snap.FinalScores), ", ")
	return fmt.Sprintf("Game over: %s %s (%s)", snap.Winner, verb, standings)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render(" Dice Duel ") + "  " + m.statusLine()

	board := m.renderBoard()

	inputPane := m.input.View() + "\n" + InfoStyle.Render(
		"create • join CODE • roll [positions to hold] • score CATEGORY • state • quit")

	logHeight := m.height - lipgloss.Height(header) - lipgloss.Height(board) - lipgloss.Height(inputPane) - 2
	if logHeight < 1 {
		logHeight = 1
	}
	m.logViewport.Width = m.width
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		board,
		m.logViewport.View(),
		inputPane,
	)
}

// statusLine summarizes the room for the header.
func (m *Model) statusLine() string {
	switch {
	case m.disconnected:
		return ErrorStyle.Render("disconnected")
	case m.snapshot == nil && m.roomCode == "":
		return InfoStyle.Render("not in a room — create or join CODE")
	case m.snapshot == nil || !m.snapshot.Ready:
		return WarningStyle.Render(fmt.Sprintf("room %s — waiting for opponent", m.roomCode))
	case m.snapshot.Winner != "":
		return TurnStyle.Render(fmt.Sprintf("room %s — game over, %s wins", m.roomCode, m.snapshot.Winner))
	case m.snapshot.CurrentPlayer == m.playerName:
		return TurnStyle.Render(fmt.Sprintf("room %s — your turn", m.roomCode))
	default:
		return InfoStyle.Render(fmt.Sprintf("room %s — waiting for %s", m.roomCode, m.snapshot.CurrentPlayer))
	}
}

// renderBoard draws the dice and both scorecards.
func (m *Model) renderBoard() string {
	if m.snapshot == nil {
		return ""
	}

	mine, ok := m.snapshot.Games[m.playerName]
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderDice(mine))
	b.WriteString("\n")
	b.WriteString(m.renderScorecard())
	return b.String()
}

// renderDice draws this player's five dice with their hold positions
// and the remaining roll budget.
func (m *Model) renderDice(ps server.PlayerSnapshot) string {
	var dice []string
	for i, face := range ps.Dice {
		dice = append(dice, DieStyle.Render(fmt.Sprintf("[%d]%s", face, HintStyle.Render(fmt.Sprintf("%d", i+1)))))
	}

	line := "Dice: " + strings.Join(dice, " ")
	myTurn := m.snapshot.CurrentPlayer == m.playerName
	switch {
	case !myTurn:
		line += "   " + InfoStyle.Render(fmt.Sprintf("turn %d/%d", ps.TurnNumber, game.NumCategories))
	case ps.RollsRemaining > 0:
		line += "   " + TurnStyle.Render(fmt.Sprintf("%d roll(s) left, turn %d/%d",
			ps.RollsRemaining, ps.TurnNumber, game.NumCategories))
	default:
		line += "   " + WarningStyle.Render(fmt.Sprintf("no rolls left — score a category (turn %d/%d)",
			ps.TurnNumber, game.NumCategories))
	}
	return line
}

// renderScorecard draws every category with each player's committed
// score, plus the hint for what the current dice would earn.
func (m *Model) renderScorecard() string {
	players := m.snapshot.Players
	mine := m.snapshot.Games[m.playerName]

	var b strings.Builder
	b.WriteString(CategoryStyle.Render(fmt.Sprintf("%-16s", "")))
	for _, name := range players {
		b.WriteString(CategoryStyle.Render(fmt.Sprintf("%10s", name)))
	}
	b.WriteString(HintStyle.Render("      would score"))
	b.WriteString("\n")

	for _, cat := range game.Categories() {
		b.WriteString(CategoryStyle.Render(fmt.Sprintf("%-16s", cat.String())))
		for _, name := range players {
			ps := m.snapshot.Games[name]
			if v, ok := ps.Scores[cat.String()]; ok {
				b.WriteString(fmt.Sprintf("%10d", v))
			} else {
				b.WriteString(fmt.Sprintf("%10s", "-"))
			}
		}
		if v, ok := mine.Possible[cat.String()]; ok {
			b.WriteString(HintStyle.Render(fmt.Sprintf("%17d", v)))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderTotals())
	return b.String()
}

func (m *Model) renderTotals() string {
	players := m.snapshot.Players

	rows := []struct {
		label string
		value func(server.PlayerSnapshot) int
	}{
		{"upper bonus", func(ps server.PlayerSnapshot) int { return ps.UpperBonus }},
		{"yahtzee bonus", func(ps server.PlayerSnapshot) int { return ps.YahtzeeBonusTotal }},
		{"total", func(ps server.PlayerSnapshot) int { return ps.GrandTotal }},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(TurnStyle.Render(fmt.Sprintf("%-16s", row.label)))
		for _, name := range players {
			b.WriteString(TurnStyle.Render(fmt.Sprintf("%10d", row.value(m.snapshot.Games[name]))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// addLog appends an entry and keeps the viewport pinned to the newest
// line.
func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// GameLog returns a copy of the log lines for assertions.
func (m *Model) GameLog() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// SortedFinalScores renders final standings highest first.
func SortedFinalScores(scores map[string]int) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s: %d", name, scores[name])
	}
	return lines
}
