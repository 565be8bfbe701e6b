package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	var opts runOptions
	pflag.StringVar(&opts.ConfigPath, "config", "./configs/realm.yaml", "path to realm.yaml (empty for built-in defaults)")
	pflag.Int64Var(&opts.Seed, "seed", 1337, "realm seed")
	pflag.IntVar(&opts.Ticks, "ticks", 1000, "ticks to run")
	pflag.Float64Var(&opts.Rate, "rate", 0.5, "chance a scripted agent tries each action kind per tick")
	pflag.StringVar(&opts.DataDir, "data", "./data", "runtime data directory")
	pflag.IntVar(&opts.SegmentTicks, "segment_ticks", 1000, "ticks per tick log file")
	pflag.BoolVar(&opts.DisableDB, "disable_db", false, "skip the sqlite run index")
	verbose := pflag.BoolP("verbose", "v", false, "log dropped actions and trades")
	pflag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Str("cmd", "sim").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, opts, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}
	logger.Info().Str("run_id", res.RunID).Int("ticks", res.Ticks).Int("alive", res.Alive).
		Str("digest", res.FinalDigest).Str("bundle", res.BundlePath).Msg("run complete")
}
