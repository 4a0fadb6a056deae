package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Concatenate multiple vectors.
func ConcatVecs(size int, vecs ...*mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(size, nil)
	offset := 0
	for _, vec := range vecs {
		if vec == nil || vec.IsEmpty() {
			continue
		}
		out.SliceVec(offset, offset+vec.Len()).(*mat.VecDense).CopyVec(vec)
		offset += vec.Len()
	}
	return out
}

// Make a block diagonal symmetric matrix.
func BlockDiag(size int, mats ...mat.Symmetric) *mat.SymDense {
	out := mat.NewSymDense(size, nil)
	offset := 0
	for _, m := range mats {
		if m == nil {
			continue
		}
		n := m.SymmetricDim()
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				out.SetSym(offset+i, offset+j, m.At(i, j))
			}
		}
		offset += n
	}
	return out
}

// Snap returns 0 when |v| < cutoff, v otherwise.
func Snap(v, cutoff float64) float64 {
	if math.Abs(v) < cutoff {
		return 0.0
	}
	return v
}

// TraceProd returns trace(a * b) for symmetric a and b without forming the
// product.
func TraceProd(a, b mat.Symmetric) float64 {
	n := a.SymmetricDim()
	if b.SymmetricDim() != n {
		panic(mat.ErrShape)
	}
	tr := 0.0
	for i := 0; i < n; i++ {
		tr += a.At(i, i) * b.At(i, i)
		for j := i + 1; j < n; j++ {
			tr += 2 * a.At(i, j) * b.At(i, j)
		}
	}
	return tr
}
