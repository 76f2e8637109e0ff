package geom

import "sort"

// MergeRects coalesces axis-aligned rectangles into fewer, larger
// ones. Adjacent rectangles of equal height on the same row are fused
// horizontally first, then equal-width stacks are fused vertically.
// The input is not modified.
func MergeRects(rects []Rect) []Rect {
	out := make([]Rect, len(rects))
	copy(out, rects)

	out = mergePass(out, func(a, b Rect) (Rect, bool) {
		if a.Y == b.Y && a.H == b.H && a.X+a.W == b.X {
			return Rect{a.X, a.Y, a.W + b.W, a.H}, true
		}
		return Rect{}, false
	}, func(a, b Rect) bool {
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	out = mergePass(out, func(a, b Rect) (Rect, bool) {
		if a.X == b.X && a.W == b.W && a.Y+a.H == b.Y {
			return Rect{a.X, a.Y, a.W, a.H + b.H}, true
		}
		return Rect{}, false
	}, func(a, b Rect) bool {
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	return out
}

func mergePass(rects []Rect, fuse func(a, b Rect) (Rect, bool), less func(a, b Rect) bool) []Rect {
	if len(rects) < 2 {
		return rects
	}
	sort.Slice(rects, func(i, j int) bool { return less(rects[i], rects[j]) })

	merged := rects[:1]
	for _, r := range rects[1:] {
		last := &merged[len(merged)-1]
		if f, ok := fuse(*last, r); ok {
			*last = f
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}
