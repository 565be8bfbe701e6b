package log

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"

	"gridrealm.ai/internal/sim/realm"
)

// DefaultSegmentTicks is how many ticks share one log file.
const DefaultSegmentTicks = 1000

// JSONLZstdWriter appends JSON lines to zstd files segmented by tick, so a
// run always lands in the same files regardless of wall clock.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	span    int

	mu     sync.Mutex
	curSeg int
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string, segmentTicks int) *JSONLZstdWriter {
	if segmentTicks < 1 {
		segmentTicks = DefaultSegmentTicks
	}
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		span:    segmentTicks,
		curSeg:  -1,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(tick int, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seg := tick / w.span
	if seg != w.curSeg {
		if err := w.rotateLocked(seg); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "encode log line")
	}
	if _, err := w.w.Write(b); err != nil {
		return eris.Wrap(err, "write log line")
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return eris.Wrap(err, "write log line")
	}
	return eris.Wrap(w.w.Flush(), "flush log line")
}

func (w *JSONLZstdWriter) rotateLocked(seg int) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForSegment(seg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "mkdir for %s", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return eris.Wrap(err, "zstd writer")
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curSeg = seg
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curSeg = -1
	return eris.Wrap(err1, "close zstd stream")
}

func (w *JSONLZstdWriter) pathForSegment(seg int) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%08d.jsonl.zst", w.prefix, seg*w.span))
}

// TickLogger writes one JSONL entry per tick (compressed).
type TickLogger struct{ w *JSONLZstdWriter }

func NewTickLogger(runDir string, segmentTicks int) *TickLogger {
	return &TickLogger{w: NewJSONLZstdWriter(filepath.Join(runDir, "ticks"), "ticks", segmentTicks)}
}

func (l *TickLogger) WriteTick(e realm.TickLogEntry) error { return l.w.Write(e.Tick, e) }
func (l *TickLogger) Close() error                         { return l.w.Close() }

// ReadTicks loads every tick entry under runDir in tick order.
func ReadTicks(runDir string) ([]realm.TickLogEntry, error) {
	paths, err := filepath.Glob(filepath.Join(runDir, "ticks", "ticks-*.jsonl.zst"))
	if err != nil {
		return nil, eris.Wrap(err, "glob tick logs")
	}
	sort.Strings(paths)

	var out []realm.TickLogEntry
	for _, p := range paths {
		entries, err := readSegment(p)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func readSegment(path string) ([]realm.TickLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, eris.Wrapf(err, "zstd reader for %s", path)
	}
	defer dec.Close()

	var out []realm.TickLogEntry
	jd := json.NewDecoder(dec)
	for {
		var e realm.TickLogEntry
		if err := jd.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, eris.Wrapf(err, "decode %s", path)
		}
		out = append(out, e)
	}
}
