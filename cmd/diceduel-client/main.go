package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pilcrowe/diceduel/internal/client"
	"github.com/pilcrowe/diceduel/internal/server"
	"github.com/pilcrowe/diceduel/internal/tui"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"diceduel-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" long:"player" help:"Player name (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" help:"Log file path (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := client.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Server != "" {
		cfg.Server.URL = CLI.Server
	}
	if CLI.Player != "" {
		cfg.Player.Name = CLI.Player
	}
	if CLI.LogLevel != "" {
		cfg.UI.LogLevel = CLI.LogLevel
	}
	if CLI.LogFile != "" {
		cfg.UI.LogFile = CLI.LogFile
	}

	// Get player name if not set
	if cfg.Player.Name == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Scanln(&input)
		cfg.Player.Name = strings.TrimSpace(input)
		if cfg.Player.Name == "" {
			fmt.Println("Player name is required")
			kctx.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger := log.New(logFile)
	switch cfg.UI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("Starting Dice Duel client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"config", CLI.Config)

	wsClient := client.NewClient(cfg.Server.URL, logger)
	wsClient.SetConnectTimeout(cfg.ConnectTimeout())
	if err := wsClient.Connect(); err != nil {
		fmt.Printf("Failed to connect to server: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = wsClient.Disconnect() }()

	model := tui.NewModel(wsClient, cfg.Player.Name, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	wireNetworkEvents(wsClient, program, logger)

	if _, err := program.Run(); err != nil {
		fmt.Printf("TUI error: %v\n", err)
		kctx.Exit(1)
	}
}

// wireNetworkEvents forwards server messages into the Bubble Tea
// program as TUI messages.
func wireNetworkEvents(wsClient *client.Client, program *tea.Program, logger *log.Logger) {
	wsClient.AddEventHandler(server.MessageTypeUpdate, func(msg *server.Message) {
		var snap server.RoomSnapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			logger.Error("Failed to parse snapshot", "error", err)
			return
		}
		program.Send(tui.SnapshotMsg{Snapshot: &snap})
	})

	for _, ack := range []server.MessageType{server.MessageTypeCreated, server.MessageTypeJoined} {
		wsClient.AddEventHandler(ack, func(msg *server.Message) {
			var data server.CreatedData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				logger.Error("Failed to parse room ack", "error", err)
				return
			}
			program.Send(tui.RoomCodeMsg{Code: data.Code})
		})
	}

	wsClient.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			logger.Error("Failed to parse error message", "error", err)
			return
		}
		program.Send(tui.ServerErrorMsg{Code: data.Code, Message: data.Message})
	})

	wsClient.SetDisconnectHandler(func() {
		program.Send(tui.DisconnectedMsg{})
	})
}
