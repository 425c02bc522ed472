// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

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
TestFilterFromQuery_HierarchyScoping verifies the type parameter: parent and
root narrow to root nodes, child narrows to nested nodes.
*/
func TestFilterFromQuery_HierarchyScoping(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		onlyRoot  bool
		onlyChild bool
	}{
		{"absent_lists_all", "", false, false},
		{"type_parent", "type=parent", true, false},
		{"type_root", "type=root", true, false},
		{"type_child", "type=child", false, true},
		{"legacy_root_param", "root=true", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			filter := filterFromQuery(request)

			assert.Equal(t, tt.onlyRoot, filter.OnlyRoot)
			assert.Equal(t, tt.onlyChild, filter.OnlyChild)
		})
	}
}

/*
TestFilterFromQuery_StatusTriState verifies the staff visibility filter:
absent lists all nodes, "1" narrows to active, "0" to hidden.
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
TestCreateCategory_VisibilityDefault verifies that an omitted flag produces
an active node while an explicit false is honoured.
*/
func TestCreateCategory_VisibilityDefault(t *testing.T) {
	repository := newMockRepository()
	handler := NewHandler(newTestService(repository))

	request := newHandlerRequest(http.MethodPost, `{"name": "Fiction"}`, staffActor(), nil)
	recorder := httptest.NewRecorder()

	handler.createCategory(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, repository.lastCreated)
	assert.True(t, repository.lastCreated.IsActive)

	request = newHandlerRequest(http.MethodPost, `{"name": "Archive", "is_active": false}`, staffActor(), nil)
	recorder = httptest.NewRecorder()

	handler.createCategory(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.False(t, repository.lastCreated.IsActive)
}

/*
TestUpdateCategory_PayloadCannotFlipVisibility ensures a PATCH body carrying
is_active leaves the flag untouched; only the toggle endpoint may flip it.
*/
func TestUpdateCategory_PayloadCannotFlipVisibility(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[5] = &Category{ID: 5, Name: "History", Slug: "history"}
	handler := NewHandler(newTestService(repository))

	body := `{"description": "World and regional history", "is_active": true}`
	request := newHandlerRequest(http.MethodPatch, body, staffActor(), map[string]string{"id": "5"})
	recorder := httptest.NewRecorder()

	handler.updateCategory(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, repository.lastUpdated)
	assert.Equal(t, "World and regional history", repository.lastUpdated.Description)
	assert.False(t, repository.lastUpdated.IsActive)
}
