package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	animepicker "anipick/agents/anime-picker"
	"anipick/agents/anime-picker/ui"
	"anipick/shared/config"
	"anipick/shared/logging"
	"anipick/shared/scheduler"
)

func main() {
	var (
		digest   = flag.Bool("digest", false, "run the scheduled email digest instead of the interactive picker")
		once     = flag.Bool("once", false, "with --digest, send one digest now and exit")
		scopeArg = flag.String("scope", "", "library, trending or discover (overrides picker.scope)")
		user     = flag.String("user", "", "AniList username (overrides anilist.username)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The interactive screen owns stdout; keep logs quiet unless asked.
	if !*digest && cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	logging.Init(cfg.Logging)

	if *user != "" {
		cfg.AniList.Username = *user
	}
	if *scopeArg != "" {
		cfg.Picker.Scope = *scopeArg
	}
	scope, err := cfg.Scope()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid scope")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := animepicker.NewPickerAgent(cfg)

	if *digest {
		runDigest(ctx, cfg, agent, *once)
		return
	}

	if agent.Username() == "" && scope.UsesLibrary() {
		name, err := promptUsername()
		if err != nil {
			logging.Fatal().Err(err).Msg("No AniList username")
		}
		agent.SetUsername(name)
	}

	if err := agent.Initialize(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize picker")
	}

	screen := ui.NewScreen(os.Stdout)
	session := animepicker.NewSession(agent, screen, ui.NewTerminalKeys(os.Stdin), ui.NewPlayer(cfg.Picker.PlayerCommand))
	if err := session.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Picker stopped")
		os.Exit(2)
	}
}

func runDigest(ctx context.Context, cfg *config.Config, agent *animepicker.PickerAgent, once bool) {
	if err := cfg.ValidateDigest(); err != nil {
		logging.Fatal().Err(err).Msg("Digest is not configured")
	}

	s := scheduler.New(cfg, agent)

	if once {
		logging.Info().Msg("Running once...")
		if err := agent.Initialize(); err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize agent")
		}
		if err := s.RunOnce(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to run")
		}
		return
	}

	logging.Info().Msg("Starting scheduler...")
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Scheduler failed")
	}
}

func promptUsername() (string, error) {
	fmt.Print("Enter your AniList username: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	name := strings.TrimSpace(line)
	if name == "" {
		if err != nil {
			return "", err
		}
		return "", fmt.Errorf("username cannot be empty (or use --scope discover)")
	}
	return name, nil
}
