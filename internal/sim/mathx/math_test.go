package mathx

import "testing"

func TestChebyshev(t *testing.T) {
	cases := []struct{ r1, c1, r2, c2, want int }{
		{10, 10, 10, 10, 0},
		{10, 10, 11, 11, 1},
		{10, 10, 12, 9, 2},
		{0, 0, -3, 1, 3},
	}
	for _, tc := range cases {
		if got := Chebyshev(tc.r1, tc.c1, tc.r2, tc.c2); got != tc.want {
			t.Fatalf("Chebyshev(%d,%d,%d,%d)=%d want %d", tc.r1, tc.c1, tc.r2, tc.c2, got, tc.want)
		}
	}
}

func TestHash2Stable(t *testing.T) {
	if Hash2(42, 3, 4) != Hash2(42, 3, 4) {
		t.Fatalf("hash not stable")
	}
	if Hash2(42, 3, 4) == Hash2(43, 3, 4) {
		t.Fatalf("seed does not affect hash")
	}
	if Hash2(42, 3, 4) == Hash2(42, 4, 3) {
		t.Fatalf("hash is symmetric in r and c")
	}
	for i := 0; i < 100; i++ {
		if p := Percent(Hash2(7, i, -i)); p < 0 || p >= 100 {
			t.Fatalf("percent out of range: %d", p)
		}
	}
}
