package blas

import "testing"

func TestSetColumnStridedWritesOnlyItsColumn(t *testing.T) {
	// dim=2 x m=3 row-major buffer; write column 1 and confirm columns 0
	// and 2 are left untouched.
	buf := make([]float64, 6)
	stride := 3
	SetColumnStrided(2, []float64{7, 8}, buf, 1, stride)

	want := []float64{0, 7, 0, 0, 8, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}
