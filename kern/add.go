package kern

var (
	add *Add
	_   Kernel = add // Check that Add respects the Kernel interface.
)

// Add is the sum of several kernels. Its parameters are those of the parts,
// in order.
type Add struct {
	parts   []Kernel
	offsets []int
	nParams int
}

func NewAdd(first, second Kernel, rest ...Kernel) *Add {
	parts := make([]Kernel, 0, 2+len(rest))
	for _, k := range append([]Kernel{first, second}, rest...) {
		switch k := k.(type) {
		case *Add:
			parts = append(parts, k.parts...)
		default:
			parts = append(parts, k)
		}
	}
	offsets := make([]int, len(parts))
	n := 0
	for i, part := range parts {
		offsets[i] = n
		n += part.NumParams()
	}
	return &Add{
		parts:   parts,
		offsets: offsets,
		nParams: n,
	}
}

// locate maps a global parameter index to a part and its local index.
func (k *Add) locate(i int) (int, int) {
	if i < 0 || i >= k.nParams {
		panic(ErrParamIndex)
	}
	for p := len(k.parts) - 1; p >= 0; p-- {
		if i >= k.offsets[p] {
			return p, i - k.offsets[p]
		}
	}
	panic(ErrParamIndex)
}

func (k *Add) Eval(x1, x2 []float64) float64 {
	val := 0.0
	for _, part := range k.parts {
		val += part.Eval(x1, x2)
	}
	return val
}

func (k *Add) Derivative(x1, x2 []float64, i int) float64 {
	p, li := k.locate(i)
	return k.parts[p].Derivative(x1, x2, li)
}

func (k *Add) SecondDerivative(x1, x2 []float64, i, j int) float64 {
	p, li := k.locate(i)
	q, lj := k.locate(j)
	if p != q {
		return 0.0
	}
	return k.parts[p].SecondDerivative(x1, x2, li, lj)
}

func (k *Add) NumParams() int {
	return k.nParams
}

func (k *Add) IsOptimized(i int) bool {
	p, li := k.locate(i)
	return k.parts[p].IsOptimized(li)
}

func (k *Add) Version() uint64 {
	var v uint64
	for _, part := range k.parts {
		v += part.Version()
	}
	return v
}
