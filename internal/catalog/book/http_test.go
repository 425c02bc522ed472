// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/ctxutil"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/pkg/pointer"
)

// # Fixtures

// newHandlerRequest builds an authenticated request carrying a chi route
// parameter, matching what the router middleware stack produces.
func newHandlerRequest(method, body string, actor *sec.AuthClaims, params map[string]string) *http.Request {
	request := httptest.NewRequest(method, "/", strings.NewReader(body))

	routeContext := chi.NewRouteContext()
	for key, value := range params {
		routeContext.URLParams.Add(key, value)
	}

	ctx := context.WithValue(request.Context(), chi.RouteCtxKey, routeContext)
	ctx = ctxutil.WithActor(ctx, actor)
	return request.WithContext(ctx)
}

// # Query Parsing

/*
TestFilterFromQuery_StatusTriState verifies the staff visibility filter:
absent lists all records, "1" narrows to active, "0" to hidden.
*/
func TestFilterFromQuery_StatusTriState(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *bool
	}{
		{"absent_lists_all", "", nil},
		{"active_only", "status=1", pointer.To(true)},
		{"inactive_only", "status=0", pointer.To(false)},
		{"garbage_ignored", "status=yes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			filter := filterFromQuery(request)

			if tt.want == nil {
				assert.Nil(t, filter.IsActive)
			} else {
				require.NotNil(t, filter.IsActive)
				assert.Equal(t, *tt.want, *filter.IsActive)
			}
		})
	}
}

// # State Flags

/*
TestCreateBook_StateFlagDefaults verifies that omitted flags produce an
active, downloadable, non-featured record.
*/
func TestCreateBook_StateFlagDefaults(t *testing.T) {
	repository := newMockRepository()
	handler := NewHandler(newTestService(repository, nil))

	body := `{"title": "Effective Cataloguing", "book_type": "digital", "access_level": "free"}`
	request := newHandlerRequest(http.MethodPost, body, staffActor(), nil)
	recorder := httptest.NewRecorder()

	handler.createBook(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, repository.lastCreated)
	assert.True(t, repository.lastCreated.IsActive)
	assert.True(t, repository.lastCreated.Downloadable)
	assert.False(t, repository.lastCreated.IsFeatured)
}

/*
TestCreateBook_StateFlagsHonoured verifies explicit creation flags reach
the store.
*/
func TestCreateBook_StateFlagsHonoured(t *testing.T) {
	repository := newMockRepository()
	handler := NewHandler(newTestService(repository, nil))

	body := `{
		"title": "Effective Cataloguing",
		"book_type": "digital",
		"access_level": "free",
		"is_active": false,
		"is_featured": true,
		"downloadable": false
	}`
	request := newHandlerRequest(http.MethodPost, body, staffActor(), nil)
	recorder := httptest.NewRecorder()

	handler.createBook(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, repository.lastCreated)
	assert.False(t, repository.lastCreated.IsActive)
	assert.True(t, repository.lastCreated.IsFeatured)
	assert.False(t, repository.lastCreated.Downloadable)
}

/*
TestUpdateBook_PayloadCannotFlipStateFlags ensures a PATCH body carrying
state flags leaves them untouched; only the toggle endpoints may flip them.
*/
func TestUpdateBook_PayloadCannotFlipStateFlags(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", Title: "Kept", Slug: "kept"}
	handler := NewHandler(newTestService(repository, nil))

	body := `{"description": "Second edition notes", "is_active": true, "is_featured": true, "downloadable": false}`
	request := newHandlerRequest(http.MethodPatch, body, staffActor(), map[string]string{"id": "b1"})
	recorder := httptest.NewRecorder()

	handler.updateBook(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, repository.lastUpdated)
	assert.Equal(t, "Second edition notes", repository.lastUpdated.Description)
	assert.False(t, repository.lastUpdated.IsActive)
	assert.False(t, repository.lastUpdated.IsFeatured)
	assert.False(t, repository.lastUpdated.Downloadable)
}
