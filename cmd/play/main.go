// play is a terminal client for 20 Questions. It drives a game engine
// in-process against the configured Ark model; no API server is needed.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/zhouzirui/twenty-questions/backend/internal/config"
	"github.com/zhouzirui/twenty-questions/backend/internal/service/ai"
	gameservice "github.com/zhouzirui/twenty-questions/backend/internal/service/game"
	"github.com/zhouzirui/twenty-questions/backend/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile string
	var logOutput string
	var baseLimit int
	var graceLimit int

	flagSet := pflag.NewFlagSet("play", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&logOutput, "log-output", "", "append log lines to this file (discarded by default)")
	flagSet.IntVar(&baseLimit, "base-limit", 0, "questions before the grace window opens (default GAME_BASE_LIMIT)")
	flagSet.IntVar(&graceLimit, "grace-limit", 0, "hard question limit once the grace window is open (default GAME_GRACE_LIMIT)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	// The TUI owns the terminal, so log lines go to a file or nowhere.
	log.SetOutput(io.Discard)
	if logOutput != "" {
		file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log output: %w", err)
		}
		defer file.Close()
		log.SetOutput(file)
	}

	if err := godotenv.Load(envFile); err != nil {
		log.Printf("warning: failed to load %s: %v", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if !cfg.AI.Enabled() {
		return fmt.Errorf("questioner model not configured: set ARK_MODEL and ARK_API_KEY (or ARK_ACCESS_KEY/ARK_SECRET_KEY)")
	}

	if flagSet.Changed("base-limit") {
		cfg.Game.BaseLimit = baseLimit
	}
	if flagSet.Changed("grace-limit") {
		cfg.Game.GraceLimit = graceLimit
	}

	questioner, err := ai.NewService(context.Background(), cfg.AI)
	if err != nil {
		return fmt.Errorf("initialize AI service: %w", err)
	}

	model := tui.NewModel(func() *gameservice.Engine {
		return gameservice.NewEngine(questioner, gameservice.WithLimits(cfg.Game.BaseLimit, cfg.Game.GraceLimit))
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
