package main

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"gridrealm.ai/internal/persistence/indexdb"
	persistlog "gridrealm.ai/internal/persistence/log"
	"gridrealm.ai/internal/replay"
	"gridrealm.ai/internal/sim/realm"
	"gridrealm.ai/internal/sim/scripted"
	"gridrealm.ai/internal/sim/tuning"
)

const npcWander = 0.5

type runOptions struct {
	ConfigPath   string
	Seed         int64
	Ticks        int
	Rate         float64
	DataDir      string
	SegmentTicks int
	DisableDB    bool
}

type runResult struct {
	RunID       string
	Ticks       int
	Alive       int
	FinalDigest string
	BundlePath  string
}

func loadConfig(path string) (tuning.Config, error) {
	if path == "" {
		return tuning.Defaults(), nil
	}
	return tuning.Load(path)
}

// run drives a scripted realm for opts.Ticks ticks and persists the bundle,
// the tick log and the index rows under opts.DataDir. A cancelled context
// stops the loop early; what ran so far is still written.
func run(ctx context.Context, opts runOptions, logger zerolog.Logger) (runResult, error) {
	var res runResult
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return res, err
	}

	r := realm.New(cfg, opts.Seed, realm.WithLogger(logger))
	rec := replay.NewRecorder(r)
	res.RunID = rec.RunID()
	runDir := filepath.Join(opts.DataDir, "runs", res.RunID)
	logger = logger.With().Str("run_id", res.RunID).Logger()

	ticks := persistlog.NewTickLogger(runDir, opts.SegmentTicks)
	defer ticks.Close()

	var idx *indexdb.SQLiteIndex
	if !opts.DisableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(opts.DataDir, "index.db"))
		if err != nil {
			return res, err
		}
		defer idx.Close()
		if err := idx.BeginRun(ctx, res.RunID, opts.Seed, cfg); err != nil {
			return res, err
		}
	}

	monkey := scripted.NewMonkey(uint64(opts.Seed), opts.Rate)
	npcs := scripted.NewNPCPolicy(uint64(opts.Seed), npcWander)
	logger.Info().Int64("seed", opts.Seed).Int("players", cfg.PlayerN).Int("npcs", len(r.NPCs())).
		Int("ticks", opts.Ticks).Msg("run started")
	for i := 0; i < opts.Ticks; i++ {
		if ctx.Err() != nil {
			logger.Warn().Int("tick", r.Tick()).Msg("interrupted")
			break
		}
		entry := rec.Record(scripted.Merge(monkey.Act(r), npcs.Act(r)))
		if err := ticks.WriteTick(entry); err != nil {
			return res, eris.Wrapf(err, "tick log at %d", entry.Tick)
		}
		if idx != nil {
			idx.WriteTick(res.RunID, entry)
		}
		if len(r.Players()) == 0 {
			logger.Info().Int("tick", entry.Tick).Msg("no agents left")
			break
		}
	}

	b := rec.Bundle()
	res.Ticks = b.Header.Ticks
	res.Alive = len(r.Players())
	res.FinalDigest = b.FinalDigest
	res.BundlePath = filepath.Join(runDir, res.RunID+".replay.zst")
	if err := replay.WriteFile(res.BundlePath, b); err != nil {
		return res, err
	}
	if idx != nil {
		idx.FinishRun(res.RunID, res.Ticks, res.FinalDigest, res.BundlePath)
		if st := idx.Stats(); st.DropTickTotal > 0 {
			logger.Warn().Uint64("dropped", st.DropTickTotal).Msg("index fell behind")
		}
	}
	return res, nil
}
