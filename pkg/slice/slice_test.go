// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/biblio/pkg/slice"
)

/*
TestDiff exercises the set-difference helper that backs association sync.
*/
func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		a    []int64
		b    []int64
		want []int64
	}{
		{"additions", []int64{2, 3, 4}, []int64{1, 2, 3}, []int64{4}},
		{"removals", []int64{1, 2, 3}, []int64{2, 3, 4}, []int64{1}},
		{"identical_sets", []int64{1, 2}, []int64{1, 2}, nil},
		{"empty_a", nil, []int64{1}, nil},
		{"empty_b", []int64{1, 2}, nil, []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slice.Diff(tt.a, tt.b))
		})
	}
}

/*
TestMap checks the basic transformation contract.
*/
func TestMap(t *testing.T) {
	doubled := slice.Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	assert.Nil(t, slice.Map(nil, func(v int) int { return v }))
}

/*
TestFilter checks predicate filtering.
*/
func TestFilter(t *testing.T) {
	evens := slice.Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, evens)
}
