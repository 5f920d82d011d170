package distance

// tileRows is the number of base rows kept hot while every query of the
// block sweeps over them. 64 rows of 128 float32 is 32 KiB, one L1d.
const tileRows = 64

// squaredL2 uses four independent accumulators. The summation order depends
// only on the vector length, never on the caller, which keeps blocked and
// pairwise results bit-identical.
func squaredL2(a, b []float32) float64 {
	b = b[:len(a)]
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(a); i += 4 {
		d0 := float64(a[i]) - float64(b[i])
		d1 := float64(a[i+1]) - float64(b[i+1])
		d2 := float64(a[i+2]) - float64(b[i+2])
		d3 := float64(a[i+3]) - float64(b[i+3])
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < len(a); i++ {
		d := float64(a[i]) - float64(b[i])
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}

func dot(a, b []float32) float64 {
	b = b[:len(a)]
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(a); i += 4 {
		s0 += float64(a[i]) * float64(b[i])
		s1 += float64(a[i+1]) * float64(b[i+1])
		s2 += float64(a[i+2]) * float64(b[i+2])
		s3 += float64(a[i+3]) * float64(b[i+3])
	}
	for ; i < len(a); i++ {
		s0 += float64(a[i]) * float64(b[i])
	}
	return (s0 + s1) + (s2 + s3)
}

// SquaredL2Block computes squared L2 distances between every query and every
// base row. See BlockFunc for the layout contract.
func SquaredL2Block(queries, bases []float32, dim int, out []float64) {
	block(queries, bases, dim, out, squaredL2)
}

// NegativeDotBlock is the blocked form of NegativeDot.
func NegativeDotBlock(queries, bases []float32, dim int, out []float64) {
	block(queries, bases, dim, out, NegativeDot)
}

func block(queries, bases []float32, dim int, out []float64, pair func(a, b []float32) float64) {
	if dim <= 0 {
		return
	}
	nq := len(queries) / dim
	nb := len(bases) / dim
	if nq == 0 || nb == 0 {
		return
	}
	out = out[:nq*nb]

	for t0 := 0; t0 < nb; t0 += tileRows {
		t1 := min(t0+tileRows, nb)
		for qi := range nq {
			q := queries[qi*dim : (qi+1)*dim]
			row := out[qi*nb : (qi+1)*nb]
			for bi := t0; bi < t1; bi++ {
				row[bi] = pair(q, bases[bi*dim:(bi+1)*dim])
			}
		}
	}
}
