// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/pkg/slug"
)

/*
TestFrom verifies the normalization pipeline across character classes.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain_title", "The Go Programming Language", "the-go-programming-language"},
		{"accents_removed", "Cien Años de Soledad", "cien-anos-de-soledad"},
		{"punctuation_dropped", "My App 2.0!", "my-app-2-0"},
		{"multi_space_collapsed", "a   b", "a-b"},
		{"leading_trailing_trimmed", " -hello- ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestUnique_NoCollision ensures a free base slug is returned without a suffix.
*/
func TestUnique_NoCollision(t *testing.T) {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return false, nil
	}

	got, err := slug.Unique(context.Background(), "test", exists)
	require.NoError(t, err)
	assert.Equal(t, "test", got)
}

/*
TestUnique_SuffixIncrement simulates three records sharing a title:
the collaborator already knows "test" and "test-1", so "test-2" is free.
*/
func TestUnique_SuffixIncrement(t *testing.T) {
	taken := map[string]bool{"test": true, "test-1": true}
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return taken[candidate], nil
	}

	got, err := slug.Unique(context.Background(), "test", exists)
	require.NoError(t, err)
	assert.Equal(t, "test-2", got)
}

/*
TestUnique_CollaboratorError ensures storage failures propagate instead of
silently returning a possibly-colliding candidate.
*/
func TestUnique_CollaboratorError(t *testing.T) {
	boom := errors.New("connection reset")
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return false, boom
	}

	_, err := slug.Unique(context.Background(), "test", exists)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
