package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"gridrealm.ai/internal/replay"
)

func main() {
	var (
		dir     = pflag.String("dir", "", "verify every *.replay.zst under this directory")
		workers = pflag.IntP("workers", "j", runtime.NumCPU(), "bundles verified concurrently")
		header  = pflag.Bool("header", false, "print bundle headers only")
	)
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("cmd", "replay").Logger()

	paths := pflag.Args()
	if *dir != "" {
		found, err := findBundles(*dir)
		if err != nil {
			logger.Fatal().Err(err).Msg("list bundles")
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay [--dir DIR] [bundle.replay.zst ...]")
		os.Exit(2)
	}

	if *header {
		for _, p := range paths {
			f, err := os.Open(p)
			if err != nil {
				logger.Fatal().Err(err).Msg("open bundle")
			}
			h, err := replay.ReadHeader(f)
			_ = f.Close()
			if err != nil {
				logger.Fatal().Err(err).Str("bundle", p).Msg("read header")
			}
			fmt.Printf("%s v%d run=%s seed=%d ticks=%d players=%d\n", p, h.Version, h.RunID, h.Seed, h.Ticks, h.Players)
		}
		return
	}

	results, err := verifyAll(context.Background(), paths, *workers)
	if err != nil {
		logger.Fatal().Err(err).Msg("verify")
	}
	failed := 0
	for i, rep := range results {
		if rep.OK() {
			fmt.Printf("ok   %s run=%s ticks=%d\n", paths[i], rep.RunID, rep.Ticks)
			continue
		}
		failed++
		fmt.Printf("FAIL %s run=%s ticks=%d\n", paths[i], rep.RunID, rep.Ticks)
		for _, m := range rep.Mismatches {
			fmt.Printf("     %s\n", m)
		}
	}
	if failed > 0 {
		logger.Error().Int("failed", failed).Int("total", len(paths)).Msg("replay diverged")
		os.Exit(1)
	}
}

func findBundles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".zst" && filepath.Ext(path[:len(path)-4]) == ".replay" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

// verifyAll replays every bundle, at most workers at a time. Reports come
// back in path order; the first unreadable bundle aborts the batch.
func verifyAll(ctx context.Context, paths []string, workers int) ([]replay.Report, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]replay.Report, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := replay.ReadFile(p)
			if err != nil {
				return err
			}
			rep, err := replay.Verify(b)
			if err != nil {
				return eris.Wrapf(err, "verify %s", p)
			}
			out[i] = rep
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
