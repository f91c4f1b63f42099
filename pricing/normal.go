package pricing

import "gonum.org/v1/gonum/stat/distuv"

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return stdNormal.CDF(x)
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return stdNormal.Prob(x)
}
