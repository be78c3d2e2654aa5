package span

import "sort"

// Union merges overlapping or touching addresses into the minimal sorted cover.
// Carets take part like any other range. Inputs with differing roots are returned
// unmerged, since offsets under different roots are not comparable.
func Union(addrs []Address) []Address {
	if len(addrs) == 0 {
		return nil
	}
	root := addrs[0].Root
	for _, a := range addrs[1:] {
		if a.Root != root {
			return append([]Address(nil), addrs...)
		}
	}

	sorted := append([]Address(nil), addrs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []Address{NewAddress(root, sorted[0].Start, sorted[0].End)}
	for _, a := range sorted[1:] {
		last := &out[len(out)-1]
		if a.Start <= last.End {
			last.End = max(last.End, a.End)
			continue
		}
		out = append(out, NewAddress(root, a.Start, a.End))
	}
	return out
}
