package handler

import (
	"math"
	"testing"
)

func TestPageBounds(t *testing.T) {
	cases := []struct {
		page, perPage, total int
		start, end           int
	}{
		{1, 10, 23, 0, 10},
		{3, 10, 23, 20, 23},
		{3, 10, 20, 20, 20},
		{4, 10, 23, 23, 23},
		{0, 10, 23, 23, 23},
		{1, 10, 0, 0, 0},
		{math.MaxInt, 10, 23, 23, 23},
		{math.MaxInt/10 + 2, 10, 23, 23, 23},
	}
	for _, tc := range cases {
		start, end := pageBounds(tc.page, tc.perPage, tc.total)
		if start != tc.start || end != tc.end {
			t.Errorf("page %d of %d: expected [%d:%d], got [%d:%d]", tc.page, tc.total, tc.start, tc.end, start, end)
		}
	}
}
