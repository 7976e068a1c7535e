package hex

import "math"

// Ring returns the points at exact distance k from center, starting at
// center + Vector(NorthWest)*k and walking each of the six directions in
// order for k steps. Ring(c, 0) is [c]; a negative k yields nil.
func Ring(center Point, k int) []Point {
	if k < 0 {
		return nil
	}
	if k == 0 {
		return []Point{center}
	}
	res := make([]Point, 0, 6*k)
	cur := center.Add(NorthWest.Vector().Scale(k))
	for _, d := range Directions {
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Neighbor(d)
		}
	}
	return res
}

// Spiral returns rings 0..k around center concatenated, innermost first.
// The result has 1+3k(k+1) distinct points.
func Spiral(center Point, k int) []Point {
	if k < 0 {
		return nil
	}
	res := make([]Point, 0, areaSize(k))
	for i := 0; i <= k; i++ {
		res = append(res, Ring(center, i)...)
	}
	return res
}

// Range returns all points within distance k of center, scanning q then r.
// It covers the same set as Spiral in a different order.
func Range(center Point, k int) []Point {
	if k < 0 {
		return nil
	}
	res := make([]Point, 0, areaSize(k))
	for q := -k; q <= k; q++ {
		for r := max(-k, -q-k); r <= min(k, -q+k); r++ {
			res = append(res, center.Add(Axial(q, r)))
		}
	}
	return res
}

// Line returns the Distance(a, b)+1 points on the straight segment from a
// to b, both ends included.
func Line(a, b Point) []Point {
	n := Distance(a, b)
	res := make([]Point, 0, n+1)
	if n == 0 {
		return append(res, a)
	}
	// nudge off exact cell edges so ties round the same way every time
	const eps = 1e-6
	aq, ar, as := float64(a.Q)+eps, float64(a.R)+eps, float64(a.S)-2*eps
	bq, br, bs := float64(b.Q)+eps, float64(b.R)+eps, float64(b.S)-2*eps
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		res = append(res, Round(lerp(aq, bq, t), lerp(ar, br, t), lerp(as, bs, t)))
	}
	return res
}

// Round snaps fractional cube coordinates to the nearest valid point:
// each component is rounded and the one with the largest rounding error is
// recomputed from the other two.
func Round(fq, fr, fs float64) Point {
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	default:
		s = -q - r
	}
	return Point{int(q), int(r), int(s)}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// areaSize is the number of points within distance k of a center.
func areaSize(k int) int { return 1 + 3*k*(k+1) }
