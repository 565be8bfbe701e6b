package realm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteString(h hash.Hash, tmp *[8]byte, s string) {
	digestWriteU64(h, tmp, uint64(len(s)))
	h.Write([]byte(s))
}

// Digest hashes the tick, the seed, the NPC id counter, the regrow queue
// and every live row of every table in scan order. Two realms with equal
// digests hold identical state.
func (r *Realm) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, uint64(r.tick))
	digestWriteU64(h, &tmp, uint64(r.seed))
	digestWriteU64(h, &tmp, uint64(int64(r.nextNPC)))
	digestWriteU64(h, &tmp, uint64(len(r.depleted)))
	for _, t := range r.depleted {
		digestWriteU64(h, &tmp, uint64(t.RecordID()))
	}
	for _, kind := range r.ds.Kinds() {
		t := r.ds.Table(kind)
		rows := t.Rows()
		digestWriteString(h, &tmp, kind)
		digestWriteU64(h, &tmp, uint64(t.Width()))
		digestWriteU64(h, &tmp, uint64(rows.Len()))
		for _, v := range rows.Data {
			digestWriteU64(h, &tmp, uint64(math.Float32bits(v)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
