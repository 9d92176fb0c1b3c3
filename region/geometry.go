package region

import "image"

// pointInPolygon is a standard ray-cast containment test over a closed
// polygon given as an ordered vertex list.
func pointInPolygon(poly []image.Point, pt image.Point) bool {
	inside := false
	n := len(poly)
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			crossX := float64(pj.X-pi.X)*float64(pt.Y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)
			if float64(pt.X) < crossX {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
