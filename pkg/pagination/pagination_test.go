// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/biblio/pkg/pagination"
)

/*
TestFromRequestDefault verifies parsing, clamping, and per-domain defaults.
*/
func TestFromRequestDefault(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		defaultLimit int
		wantPage     int
		wantLimit    int
	}{
		{"no_params", "/books", 10, 1, 10},
		{"explicit_page", "/books?page=3", 10, 3, 10},
		{"explicit_limit", "/books?limit=25", 10, 1, 25},
		{"negative_page_clamped", "/books?page=-2", 10, 1, 10},
		{"excessive_limit_clamped", "/books?limit=9999", 15, 1, 15},
		{"garbage_ignored", "/books?page=abc&limit=xyz", 15, 1, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", tt.url, nil)
			params := pagination.FromRequestDefault(request, tt.defaultLimit)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

/*
TestOffset checks the page → SQL OFFSET translation.
*/
func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, pagination.Params{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 30, pagination.Params{Page: 3, Limit: 15}.Offset())
}

/*
TestNewMeta checks total-page rounding.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 10, 41)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 10, meta.Limit)
	assert.Equal(t, 41, meta.Total)
	assert.Equal(t, 5, meta.TotalPages)
}
