package span

import (
	"testing"
)

func TestUnion(t *testing.T) {
	root := parseBody(t, "<p>0123456789abcdef</p>")

	tests := []struct {
		name string
		in   [][2]int
		want [][2]int
	}{
		{name: "empty", in: nil, want: nil},
		{name: "disjoint", in: [][2]int{{5, 7}, {0, 2}}, want: [][2]int{{0, 2}, {5, 7}}},
		{name: "overlapping", in: [][2]int{{0, 4}, {2, 6}}, want: [][2]int{{0, 6}}},
		{name: "touching", in: [][2]int{{0, 3}, {3, 5}}, want: [][2]int{{0, 5}}},
		{name: "contained", in: [][2]int{{0, 10}, {2, 4}, {11, 12}}, want: [][2]int{{0, 10}, {11, 12}}},
		{name: "caret inside", in: [][2]int{{0, 4}, {2, 2}}, want: [][2]int{{0, 4}}},
		{name: "caret touching", in: [][2]int{{0, 4}, {4, 4}, {6, 6}}, want: [][2]int{{0, 4}, {6, 6}}},
		{name: "chain", in: [][2]int{{4, 6}, {0, 2}, {2, 4}, {8, 9}}, want: [][2]int{{0, 6}, {8, 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in []Address
			for _, r := range tt.in {
				in = append(in, NewAddress(root, r[0], r[1]))
			}
			got := Union(in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d ranges, got %v", len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].Start != w[0] || got[i].End != w[1] || got[i].Root != root {
					t.Errorf("range %d: expected [%d,%d), got %s", i, w[0], w[1], got[i])
				}
			}
		})
	}
}

func TestUnion_CoverageMatchesSetUnion(t *testing.T) {
	root := parseBody(t, "<p>x</p>")
	inputs := [][2]int{{3, 9}, {0, 1}, {8, 12}, {20, 25}, {1, 2}, {14, 14}, {24, 30}, {13, 15}}

	covered := map[int]bool{}
	var in []Address
	for _, r := range inputs {
		in = append(in, NewAddress(root, r[0], r[1]))
		for i := r[0]; i < r[1]; i++ {
			covered[i] = true
		}
	}

	got := Union(in)
	total := 0
	for i, a := range got {
		total += a.Len()
		if i > 0 && got[i-1].End >= a.Start {
			t.Errorf("ranges %s and %s overlap or touch", got[i-1], a)
		}
	}
	if total != len(covered) {
		t.Errorf("expected %d covered offsets, got %d", len(covered), total)
	}
}

func TestUnion_MixedRootsPassThrough(t *testing.T) {
	body := parseBody(t, "<p>abc</p><div>def</div>")
	p := find(t, body, "p")
	div := find(t, body, "div")

	in := []Address{NewAddress(p, 0, 2), NewAddress(div, 1, 3), NewAddress(p, 1, 3)}
	got := Union(in)
	if len(got) != 3 {
		t.Fatalf("expected input back unmerged, got %v", got)
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("position %d: expected %s, got %s", i, in[i], got[i])
		}
	}
}
