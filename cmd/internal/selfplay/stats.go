package selfplay

import (
	"math"
	"math/big"
)

func binomprob(k, n int64, p float64) float64 {
	b := big.NewFloat(0).SetInt(big.NewInt(0).Binomial(n, k))
	b.Mul(b, big.NewFloat(math.Pow(p, float64(k))))
	b.Mul(b, big.NewFloat(math.Pow(1-p, float64(n-k))))
	f, _ := b.Float64()
	return f
}

func binomTest(succ, fail int64, p float64) float64 {
	var r float64
	for t := succ; t < succ+fail; t++ {
		r += binomprob(t, succ+fail, p)
	}
	return r
}
