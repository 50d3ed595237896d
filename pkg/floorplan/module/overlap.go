package module

// Pair identifies two overlapping modules by ID.
type Pair struct {
	A, B int
}

// Overlaps returns every pair of modules whose placed rectangles intersect
// with positive area. Touching edges do not count.
func Overlaps(mods []Module) []Pair {
	var pairs []Pair
	for i := range mods {
		a := mods[i]
		for j := i + 1; j < len(mods); j++ {
			b := mods[j]
			if min(a.Right(), b.Right()) > max(a.X, b.X) &&
				min(a.Top(), b.Top()) > max(a.Y, b.Y) {
				pairs = append(pairs, Pair{A: a.ID, B: b.ID})
			}
		}
	}
	return pairs
}

// CheckOverlap reports whether any two modules overlap.
func CheckOverlap(mods []Module) bool {
	return len(Overlaps(mods)) > 0
}
