package audio

import "math"

// Spectrum computes a coarse magnitude spectrum of a PCM window via a
// direct DFT. Windows are small (at most a few hundred samples) and
// snapshots are taken at UI rates, so the naive transform is fine.
func Spectrum(samples []int16, bins int) []float64 {
	out := make([]float64, bins)
	n := len(samples)
	if n == 0 || bins <= 0 {
		return out
	}
	for k := 0; k < bins; k++ {
		var re, im float64
		for i, s := range samples {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			v := float64(s) / 32768
			re += v * math.Cos(angle)
			im += v * math.Sin(angle)
		}
		out[k] = math.Sqrt(re*re+im*im) / float64(n)
	}
	return out
}
