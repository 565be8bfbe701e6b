package mathx

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Chebyshev is the king-move distance between two grid cells.
func Chebyshev(r1, c1, r2, c2 int) int {
	dr, dc := AbsInt(r1-r2), AbsInt(c1-c2)
	if dr > dc {
		return dr
	}
	return dc
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 is a stateless per-cell hash; the same (seed, r, c) always yields
// the same value.
func Hash2(seed int64, r, c int) uint64 {
	ur := uint64(uint32(int32(r)))
	uc := uint64(uint32(int32(c)))
	v := uint64(seed) ^ (ur * 0x9e3779b97f4a7c15) ^ (uc * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Percent maps a hash onto [0, 100).
func Percent(h uint64) int { return int(h % 100) }
