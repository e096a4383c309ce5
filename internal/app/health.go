package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/bulletin/internal/cli"
	"horse.fit/bulletin/internal/config"
	"horse.fit/bulletin/internal/logging"
	"horse.fit/bulletin/internal/nlp"
	"horse.fit/bulletin/internal/rules"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	set, err := rules.Load()
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	if _, err := nlp.NewCleaner(set.Contractions); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	logger.Info().
		Int("tags", len(set.Tags)).
		Int("countries", len(set.Countries)).
		Int("priority_keywords", len(set.PriorityKeywords)).
		Int("denylist_patterns", len(set.HeadlineDenylist)).
		Int("timezones", len(set.Timezones)).
		Msg("rule tables loaded")
	fmt.Println("ok: rule tables compiled")
	return 0
}
