package geom

import "math"

// TimeToIntercept returns the earliest t >= 0 at which a mover starting at
// viewerPos with speed budget maxSpeed can stand on targetPos + targetVel·t.
// It returns +Inf when the target can never be reached.
//
// The mover may pick any velocity within its budget, so viewerVel does not
// constrain the result.
func TimeToIntercept(viewerPos, viewerVel, targetPos, targetVel Vector, maxSpeed float64) float64 {
	d := viewerPos.Sub(targetPos)
	a := maxSpeed*maxSpeed - targetVel.Norm2()
	halfB := targetVel.Dot(d)
	c := -d.Norm2()

	if c == 0 {
		return 0
	}

	if a == 0 {
		// Linear in t: 2·halfB·t + c = 0.
		if halfB <= 0 {
			return math.Inf(1)
		}
		return -c / (2 * halfB)
	}

	disc := halfB*halfB - a*c
	switch {
	case disc < 0:
		return math.Inf(1)
	case disc == 0:
		t := -halfB / a
		if t >= 0 {
			return t
		}
		return math.Inf(1)
	}

	sq := math.Sqrt(disc)
	t1 := (-halfB - sq) / a
	t2 := (-halfB + sq) / a
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 >= 0 {
		return t1
	}
	if t2 >= 0 {
		return t2
	}
	return math.Inf(1)
}
