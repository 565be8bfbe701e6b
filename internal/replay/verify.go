package replay

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"gridrealm.ai/internal/sim/realm"
)

// MaxMismatches bounds a report; a diverged run differs on every tick after.
const MaxMismatches = 10

type Mismatch struct {
	Tick  int    `json:"tick"`
	What  string `json:"what"`
	Patch string `json:"patch,omitempty"`
}

func (m Mismatch) String() string {
	if m.Patch == "" {
		return fmt.Sprintf("tick %d: %s", m.Tick, m.What)
	}
	return fmt.Sprintf("tick %d: %s: %s", m.Tick, m.What, m.Patch)
}

type Report struct {
	RunID      string     `json:"run_id"`
	Ticks      int        `json:"ticks"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

func (r Report) OK() bool { return len(r.Mismatches) == 0 }

// Verify rebuilds the run from the bundle's seed and config, feeds it the
// recorded actions and compares every digest and both observation sets.
// opts must supply the same terrain and combat the run was recorded with.
func Verify(b *Bundle, opts ...realm.Option) (Report, error) {
	rep := Report{RunID: b.Header.RunID}
	if err := b.Config.Validate(); err != nil {
		return rep, eris.Wrap(err, "bundle config")
	}
	r := realm.New(b.Config, b.Header.Seed, opts...)

	full := func() bool { return len(rep.Mismatches) >= MaxMismatches }
	if err := compareObs(&rep, 0, "initial observations", b.InitialObs, Snapshot(r)); err != nil {
		return rep, err
	}
	for _, t := range b.Ticks {
		if full() {
			return rep, nil
		}
		if t.Tick != r.Tick() {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Tick: t.Tick, What: fmt.Sprintf("recorded tick, realm is at %d", r.Tick())})
		}
		entry := r.Step(t.Actions)
		rep.Ticks++
		if entry.Digest != t.Digest {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Tick: t.Tick, What: fmt.Sprintf("digest %s, recorded %s", entry.Digest, t.Digest)})
		}
	}
	if full() {
		return rep, nil
	}
	if err := compareObs(&rep, r.Tick(), "final observations", b.FinalObs, Snapshot(r)); err != nil {
		return rep, err
	}
	if d := r.Digest(); d != b.FinalDigest {
		rep.Mismatches = append(rep.Mismatches, Mismatch{Tick: r.Tick(), What: fmt.Sprintf("final digest %s, recorded %s", d, b.FinalDigest)})
	}
	return rep, nil
}

func compareObs(rep *Report, tick int, what string, recorded, replayed []ObsRecord) error {
	want, err := json.Marshal(recorded)
	if err != nil {
		return eris.Wrap(err, "encode recorded observations")
	}
	got, err := json.Marshal(replayed)
	if err != nil {
		return eris.Wrap(err, "encode replayed observations")
	}
	patch, err := jsondiff.CompareJSON(want, got)
	if err != nil {
		return eris.Wrap(err, "diff observations")
	}
	if s := patch.String(); s != "" {
		rep.Mismatches = append(rep.Mismatches, Mismatch{Tick: tick, What: what, Patch: s})
	}
	return nil
}
