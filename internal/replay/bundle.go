// Package replay records a run as a self-contained bundle (seed, config,
// observations and the per-tick action stream) and replays bundles to check
// that the simulation reproduces them bit for bit.
package replay

import (
	"github.com/oklog/ulid/v2"

	"gridrealm.ai/internal/sim/observation"
	"gridrealm.ai/internal/sim/realm"
	"gridrealm.ai/internal/sim/tuning"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Seed    int64  `json:"seed"`
	Ticks   int    `json:"ticks"`
	Players int    `json:"players"`
}

// ObsRecord is one agent's observation in exported form.
type ObsRecord struct {
	AgentID int                    `json:"agent_id"`
	Tensors map[string][][]float32 `json:"tensors"`
	Masks   observation.Masks      `json:"masks"`
}

type TickRecord struct {
	Tick    int           `json:"tick"`
	Actions realm.Actions `json:"actions"`
	Digest  string        `json:"digest"`
}

type Bundle struct {
	Header      Header        `json:"header"`
	Config      tuning.Config `json:"config"`
	InitialObs  []ObsRecord   `json:"initial_obs"`
	Ticks       []TickRecord  `json:"ticks"`
	FinalObs    []ObsRecord   `json:"final_obs"`
	FinalDigest string        `json:"final_digest"`
}

// Snapshot exports the realm's current observations in agent id order.
func Snapshot(r *realm.Realm) []ObsRecord {
	ids := r.Players()
	out := make([]ObsRecord, 0, len(ids))
	for _, id := range ids {
		o, _ := r.Observe(id)
		masks, _ := r.Masks(id)
		rec := ObsRecord{AgentID: id, Tensors: map[string][][]float32{}, Masks: masks}
		for name, rows := range o.Tensors() {
			rec.Tensors[name] = rows.Slices()
		}
		out = append(out, rec)
	}
	return out
}

// Recorder steps a realm and keeps everything needed to replay the run.
type Recorder struct {
	r *realm.Realm
	b Bundle
}

func NewRecorder(r *realm.Realm) *Recorder {
	return &Recorder{
		r: r,
		b: Bundle{
			Header: Header{
				Version: Version,
				RunID:   ulid.Make().String(),
				Seed:    r.Seed(),
				Players: r.Config().PlayerN,
			},
			Config:     r.Config(),
			InitialObs: Snapshot(r),
		},
	}
}

func (rec *Recorder) RunID() string { return rec.b.Header.RunID }

func (rec *Recorder) Record(actions realm.Actions) realm.TickLogEntry {
	entry := rec.r.Step(actions)
	rec.b.Ticks = append(rec.b.Ticks, TickRecord{Tick: entry.Tick, Actions: actions, Digest: entry.Digest})
	return entry
}

// Bundle closes the recording over the realm's current state.
func (rec *Recorder) Bundle() *Bundle {
	b := rec.b
	b.Header.Ticks = len(b.Ticks)
	b.Ticks = append([]TickRecord(nil), rec.b.Ticks...)
	b.FinalObs = Snapshot(rec.r)
	b.FinalDigest = rec.r.Digest()
	return &b
}
