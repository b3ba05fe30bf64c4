package voice

import "math"

// BezierCurve is a normalized cubic Bezier with fixed endpoints (0,0)
// and (1,1) and free control points (X1,Y1)-(X2,Y2), the shape every
// fade transition solves against.
type BezierCurve struct {
	X1, Y1, X2, Y2 float64
}

// DefaultBezier is a gentle ease-in/ease-out curve, generalized from the
// teacher's linear fade envelope (client/notification.go) into a
// Bezier solve as the spec directs.
func DefaultBezier() BezierCurve {
	return BezierCurve{X1: 0.25, Y1: 0.1, X2: 0.25, Y2: 1}
}

// LinearBezier is a straight-line fade, equivalent to the teacher's
// original linear envelope.
func LinearBezier() BezierCurve {
	return BezierCurve{X1: 0, Y1: 0, X2: 1, Y2: 1}
}

func bezierPoint(p0, p1, p2, p3, t float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

func bezierDerivative(p0, p1, p2, p3, t float64) float64 {
	u := 1 - t
	return 3*u*u*(p1-p0) + 6*u*t*(p2-p1) + 3*t*t*(p3-p2)
}

// bootstrapT bootstraps Newton's method with an 11-sample lookup so
// the solve converges in a couple of iterations regardless of curve
// shape.
func (b BezierCurve) bootstrapT(x float64) float64 {
	best := 0.0
	bestDist := math.Inf(1)
	for i := 0; i <= 10; i++ {
		t := float64(i) / 10
		bx := bezierPoint(0, b.X1, b.X2, 1, t)
		d := math.Abs(bx - x)
		if d < bestDist {
			bestDist = d
			best = t
		}
	}
	return best
}

// GetFromPercentage solves for the Bezier parameter t matching x==pct
// via Newton's method bootstrapped from an 11-sample table, then
// evaluates y at that parameter.
func (b BezierCurve) GetFromPercentage(pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	if pct >= 1 {
		return 1
	}
	t := b.bootstrapT(pct)
	for i := 0; i < 8; i++ {
		x := bezierPoint(0, b.X1, b.X2, 1, t)
		dx := bezierDerivative(0, b.X1, b.X2, 1, t)
		if math.Abs(dx) < 1e-9 {
			break
		}
		t -= (x - pct) / dx
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	return bezierPoint(0, b.Y1, b.Y2, 1, t)
}

// Fader drives a normalized [from,to] value over a configurable
// duration along a BezierCurve, with the start time set at the owning
// channel's state transition.
type Fader struct {
	curve     BezierCurve
	startTime float64
	duration  float64
	from, to  float64
}

// NewFader constructs a fader using curve, initially at rest (duration
// zero).
func NewFader(curve BezierCurve) *Fader {
	return &Fader{curve: curve}
}

// Start begins a new fade from `from` to `to` over `duration` seconds,
// beginning at `now`.
func (f *Fader) Start(now, duration, from, to float64) {
	f.startTime = now
	f.duration = duration
	f.from = from
	f.to = to
}

// Value evaluates the fade at time `now`, clamped to [0, duration].
func (f *Fader) Value(now float64) float64 {
	if f.duration <= 0 {
		return f.to
	}
	pct := (now - f.startTime) / f.duration
	if pct < 0 {
		pct = 0
	} else if pct > 1 {
		pct = 1
	}
	y := f.curve.GetFromPercentage(pct)
	return f.from + (f.to-f.from)*y
}

// Done reports whether the fade has reached its end time.
func (f *Fader) Done(now float64) bool {
	return now >= f.startTime+f.duration
}
