// Package indexdb keeps a queryable SQLite index of recorded runs next to the
// tick logs and replay bundles. The files stay the source of truth; the index
// may drop rows when its writer falls behind.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"gridrealm.ai/internal/sim/realm"
	"gridrealm.ai/internal/sim/tuning"
)

const queueSize = 65536

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick   atomic.Uint64
	dropFinish atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqFinish
)

type req struct {
	kind  reqKind
	runID string

	tick   realm.TickLogEntry
	finish finishRow
}

type finishRow struct {
	Ticks       int
	FinalDigest string
	BundlePath  string
}

// Run is one row of the runs table.
type Run struct {
	RunID        string
	Seed         int64
	Players      int
	ConfigDigest string
	StartedAt    string
	Ticks        int
	FinalDigest  string
	BundlePath   string
}

type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropTickTotal   uint64
	DropFinishTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, eris.New("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "mkdir for %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queueSize),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return eris.Wrapf(err, "pragma %q", p)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS configs (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			players INTEGER NOT NULL,
			config_digest TEXT NOT NULL REFERENCES configs(digest),
			started_at TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			final_digest TEXT NOT NULL DEFAULT '',
			bundle_path TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			tick INTEGER NOT NULL,
			digest TEXT NOT NULL,
			actions INTEGER NOT NULL,
			applied INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			expired INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE TABLE IF NOT EXISTS deaths (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			PRIMARY KEY (run_id, agent_id)
		);`,
		`CREATE TABLE IF NOT EXISTS actions (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			applied INTEGER NOT NULL,
			args_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_agent_tick ON actions(run_id, agent_id, tick);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return eris.Wrap(err, "init schema")
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = eris.Wrap(s.db.Close(), "close index")
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropTickTotal:   s.dropTick.Load(),
		DropFinishTotal: s.dropFinish.Load(),
	}
}

// BeginRun stores the run row and its config synchronously, so tick rows
// queued afterwards always have a parent.
func (s *SQLiteIndex) BeginRun(ctx context.Context, runID string, seed int64, cfg tuning.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "encode config")
	}
	sum := sha256.Sum256(raw)
	digest := hex.EncodeToString(sum[:])

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO configs(digest,json) VALUES(?,?)`, digest, string(raw)); err != nil {
		return eris.Wrap(err, "insert config")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(run_id,seed,players,config_digest,started_at) VALUES(?,?,?,?,?)`,
		runID, seed, cfg.PlayerN, digest, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return eris.Wrapf(err, "insert run %s", runID)
	}
	return eris.Wrap(tx.Commit(), "commit run")
}

// WriteTick queues a tick row; when the queue is full the row is dropped and
// counted in Stats.
func (s *SQLiteIndex) WriteTick(runID string, entry realm.TickLogEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqTick, runID: runID, tick: entry}:
	default:
		s.dropTick.Add(1)
	}
}

func (s *SQLiteIndex) FinishRun(runID string, ticks int, finalDigest, bundlePath string) {
	if s == nil || s.closed.Load() {
		return
	}
	f := finishRow{Ticks: ticks, FinalDigest: finalDigest, BundlePath: bundlePath}
	select {
	case s.ch <- req{kind: reqFinish, runID: runID, finish: f}:
	default:
		s.dropFinish.Add(1)
	}
}

func (s *SQLiteIndex) Run(ctx context.Context, runID string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id,seed,players,config_digest,started_at,ticks,final_digest,bundle_path FROM runs WHERE run_id=?`, runID,
	).Scan(&r.RunID, &r.Seed, &r.Players, &r.ConfigDigest, &r.StartedAt, &r.Ticks, &r.FinalDigest, &r.BundlePath)
	if err != nil {
		return r, eris.Wrapf(err, "run %s", runID)
	}
	return r, nil
}

// TickDigests returns the indexed digests of a run in tick order.
func (s *SQLiteIndex) TickDigests(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT digest FROM ticks WHERE run_id=? ORDER BY tick`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "ticks of %s", runID)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "scan tick")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "ticks")
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(run_id,tick,digest,actions,applied,deaths,expired,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertDeath, _ := s.db.Prepare(`INSERT OR REPLACE INTO deaths(run_id,tick,agent_id) VALUES(?,?,?)`)
	insertAction, _ := s.db.Prepare(`INSERT OR REPLACE INTO actions(run_id,tick,seq,agent_id,kind,applied,args_json) VALUES(?,?,?,?,?,?,?)`)
	updateRun, _ := s.db.Prepare(`UPDATE runs SET ticks=?, final_digest=?, bundle_path=? WHERE run_id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertDeath, insertAction, updateRun} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			e := r.tick
			applied := 0
			for _, a := range e.Actions {
				if a.Applied {
					applied++
				}
			}
			raw, _ := json.Marshal(e)
			if insertTick != nil {
				if _, err := tx.Stmt(insertTick).Exec(r.runID, e.Tick, e.Digest, len(e.Actions), applied, len(e.Deaths), e.Expired, string(raw)); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for _, id := range e.Deaths {
				if insertDeath == nil {
					break
				}
				if _, err := tx.Stmt(insertDeath).Exec(r.runID, e.Tick, id); err != nil {
					rollback()
					break
				}
				opCount++
			}
			for i, a := range e.Actions {
				if insertAction == nil || tx == nil {
					break
				}
				args, _ := json.Marshal(a.Args)
				if _, err := tx.Stmt(insertAction).Exec(r.runID, e.Tick, i, a.AgentID, a.Kind.String(), a.Applied, string(args)); err != nil {
					rollback()
					break
				}
				opCount++
			}

		case reqFinish:
			f := r.finish
			if updateRun != nil {
				if _, err := tx.Stmt(updateRun).Exec(f.Ticks, f.FinalDigest, f.BundlePath, r.runID); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
