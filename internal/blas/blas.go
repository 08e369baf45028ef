// Package blas provides the one strided-write helper the L-BFGS history
// window needs that gonum/floats does not address directly: writing a
// length-n vector into a row-major, fixed-stride backing array (a gonum
// Dense's raw storage) as one column, without allocating a view.
package blas

// SetColumnStrided writes src (length n) into dst starting at offset off,
// one element every stride positions — dst is a row-major n_row×stride
// buffer and this writes one logical column.
func SetColumnStrided(n int, src []float64, dst []float64, off, stride int) {
	for i := 0; i < n; i++ {
		dst[off+i*stride] = src[i]
	}
}
