package main

import (
	"fmt"
	"net"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/tui/app"
	"github.com/tetris-web/achievements/internal/tui/client"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch a profile's achievements from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		wsURL, _ := cmd.Flags().GetString("url")
		if wsURL == "" {
			host := cfg.Server.Host
			if host == "" || host == "0.0.0.0" {
				host = "127.0.0.1"
			}
			wsURL = "ws://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)) + "/ws"
		}
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = cfg.Server.AuthToken
		}
		style, _ := cmd.Flags().GetString("style")

		// The alt screen owns the terminal; logs only go to a file if asked.
		logger := zap.NewNop()
		if path, _ := cmd.Flags().GetString("log-file"); path != "" {
			logCfg := cfg.Log
			logCfg.Output = path
			if logger, err = newLoggerFrom(logCfg); err != nil {
				return err
			}
			defer logger.Sync()
		}

		ws := client.NewWSClient(wsURL, token, cfg.Profile, logger)
		httpClient := client.NewHTTPClient(client.HTTPBase(wsURL), token, cfg.Profile)

		m := app.New(ws, httpClient, app.Options{Profile: cfg.Profile, MarkdownStyle: style})
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().String("url", "", "WebSocket URL of the server (default from config)")
	tuiCmd.Flags().String("token", "", "Auth token (default from config)")
	tuiCmd.Flags().String("style", "dark", "Markdown style for the detail card: dark, light, dracula, notty")
	tuiCmd.Flags().String("log-file", "", "Write client logs to this file")
}
