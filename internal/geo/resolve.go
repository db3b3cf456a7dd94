package geo

// Resolve returns the name of the known location that p is near. Every known
// location is checked in order and a later match replaces an earlier one, so
// with overlapping locations the last configured one wins. Travelling is
// returned when nothing matches.
func Resolve(p Location, known []Location, threshold float64) string {
	label := Travelling
	for _, loc := range known {
		if p.IsNear(loc, threshold) {
			label = loc.Name
		}
	}
	return label
}
