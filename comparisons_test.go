package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

func charComp(got, want string) {
	for c := range got {
		if len(want) <= c {
			fmt.Println("want too short")
			return
		}
		if got[c] != want[c] {
			fmt.Printf("got\n%q, wanted\n%q\n",
				got[:c+1], want[:c+1])
			return
		}
	}
	if len(got) < len(want) {
		fmt.Println("got too short")
	}
}

// compFloat reports whether got and want are within eps of each other
func compFloat(got, want, eps float64) bool {
	return math.Abs(got-want) <= eps
}

// return the norm of the difference between got and want and whether or not it
// is greater than eps
func vecNorm(got, want []float64, eps float64) (float64, bool) {
	var diff mat.VecDense
	diff.SubVec(mat.NewVecDense(len(got), got),
		mat.NewVecDense(len(want), want))
	norm := mat.Norm(&diff, 2)
	return norm, norm > eps
}

// compDense reports whether got and want have the same shape and
// agree elementwise within eps
func compDense(got, want *mat.Dense, eps float64) bool {
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		return false
	}
	return mat.EqualApprox(got, want, eps)
}
