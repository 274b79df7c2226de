package curve

// Lerp performs linear interpolation between a and b.
func Lerp[T Value[T]](a, b T, t float64) T {
	return a.Add(b.Sub(a).Scale(t))
}

// Hermite evaluates a cubic Hermite segment. m0 and m1 are tangents already scaled by the
// segment length.
func Hermite[T Value[T]](p0, m0, p1, m1 T, s float64) T {
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return p0.Scale(h00).Add(m0.Scale(h10)).Add(p1.Scale(h01)).Add(m1.Scale(h11))
}

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
