package boxfix

import "sort"

// Order sets each region's Depth and returns the regions in repair order:
// by right border column, then top to bottom. A contained box always ends
// left of its container, and a box left of another on the same lines ends
// first, so every repair happens before anything it could shift.
func Order(regions []Region) []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	for i := range out {
		out[i].Depth = 0
		for j := range out {
			if i != j && out[j].contains(out[i]) {
				out[i].Depth++
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RightCol() != b.RightCol() {
			return a.RightCol() < b.RightCol()
		}
		return a.Top.Line < b.Top.Line
	})
	return out
}
