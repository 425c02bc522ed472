// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/pkg/pointer"
)

// # Test Doubles

// mockRepository implements [Repository] with canned data per test.
type mockRepository struct {
	nodes     map[int64]*Category
	takenSlug map[string]bool

	childCount  map[int64]int64
	bookCount   map[int64]int64
	descendants map[int64][]int64 // subtree membership by root

	nextID      int64
	lastCreated *Category
	lastUpdated *Category
	deleted     []int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		nodes:       make(map[int64]*Category),
		takenSlug:   make(map[string]bool),
		childCount:  make(map[int64]int64),
		bookCount:   make(map[int64]int64),
		descendants: make(map[int64][]int64),
		nextID:      100,
	}
}

func (m *mockRepository) List(_ context.Context, _ Filter, _, _ int) ([]*Category, int, error) {
	var all []*Category
	for _, node := range m.nodes {
		all = append(all, node)
	}
	return all, len(all), nil
}

func (m *mockRepository) ListAll(_ context.Context, onlyActive bool) ([]*Category, error) {
	var all []*Category
	for _, node := range m.nodes {
		if onlyActive && !node.IsActive {
			continue
		}
		all = append(all, node)
	}
	return all, nil
}

func (m *mockRepository) FindByID(_ context.Context, id int64) (*Category, error) {
	node, ok := m.nodes[id]
	if !ok {
		return nil, apperr.NotFound("category")
	}
	return node, nil
}

func (m *mockRepository) FindBySlug(_ context.Context, slug string) (*Category, error) {
	for _, node := range m.nodes {
		if node.Slug == slug {
			return node, nil
		}
	}
	return nil, apperr.NotFound("category")
}

func (m *mockRepository) SlugExists(_ context.Context, slug string, _ int64) (bool, error) {
	return m.takenSlug[slug], nil
}

func (m *mockRepository) IsDescendant(_ context.Context, ancestorID, candidateID int64) (bool, error) {
	for _, id := range m.descendants[ancestorID] {
		if id == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) NextSortOrder(_ context.Context, parentID *int64) (int, error) {
	highest := 0
	for _, node := range m.nodes {
		sameGroup := (parentID == nil && node.ParentID == nil) ||
			(parentID != nil && node.ParentID != nil && *parentID == *node.ParentID)
		if sameGroup && node.SortOrder > highest {
			highest = node.SortOrder
		}
	}
	return highest + 1, nil
}

func (m *mockRepository) Create(_ context.Context, node *Category) error {
	m.nextID++
	node.ID = m.nextID
	m.lastCreated = node
	m.nodes[node.ID] = node
	return nil
}

func (m *mockRepository) Update(_ context.Context, node *Category) error {
	if _, ok := m.nodes[node.ID]; !ok {
		return apperr.NotFound("category")
	}
	m.lastUpdated = node
	return nil
}

func (m *mockRepository) CountChildren(_ context.Context, id int64) (int64, error) {
	return m.childCount[id], nil
}

func (m *mockRepository) CountBooks(_ context.Context, id int64) (int64, error) {
	return m.bookCount[id], nil
}

func (m *mockRepository) SoftDelete(_ context.Context, id int64) error {
	if _, ok := m.nodes[id]; !ok {
		return apperr.NotFound("category")
	}
	m.deleted = append(m.deleted, id)
	delete(m.nodes, id)
	return nil
}

func (m *mockRepository) ToggleActive(_ context.Context, id int64) (bool, error) {
	node, ok := m.nodes[id]
	if !ok {
		return false, apperr.NotFound("category")
	}
	node.IsActive = !node.IsActive
	return node.IsActive, nil
}

// fakeDisk records writes and removals for compensation assertions.
type fakeDisk struct {
	saved   []string
	removed []string
}

func (d *fakeDisk) Save(dir, extension string, _ io.Reader) (string, error) {
	path := dir + "/generated" + extension
	d.saved = append(d.saved, path)
	return path, nil
}

func (d *fakeDisk) Remove(path string) error {
	d.removed = append(d.removed, path)
	return nil
}

// # Fixtures

func newTestService(repository *mockRepository) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, &fakeDisk{}, logger)
}

func staffActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "staff-1", Username: "librarian", Role: sec.RoleLibrarian}
}

func adminActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: sec.RoleAdmin}
}

// # Creation

/*
TestCreateCategory_GeneratesSlugAndSortOrder verifies derived attributes:
the slug comes from the name and the sort order shelves the node last.
*/
func TestCreateCategory_GeneratesSlugAndSortOrder(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[1] = &Category{ID: 1, Name: "Fiction", Slug: "fiction", SortOrder: 3}
	service := newTestService(repository)

	node := &Category{Name: "Science Fiction"}
	require.NoError(t, service.CreateCategory(context.Background(), staffActor(), node, nil))

	assert.Equal(t, "science-fiction", node.Slug)
	assert.Equal(t, 4, node.SortOrder)
}

/*
TestCreateCategory_SlugCollisionSuffix verifies the numeric suffix walk.
*/
func TestCreateCategory_SlugCollisionSuffix(t *testing.T) {
	repository := newMockRepository()
	repository.takenSlug["fiction"] = true
	service := newTestService(repository)

	node := &Category{Name: "Fiction"}
	require.NoError(t, service.CreateCategory(context.Background(), staffActor(), node, nil))

	assert.Equal(t, "fiction-1", node.Slug)
}

/*
TestCreateCategory_RejectsUnknownParent ensures the parent reference must
point at a live node.
*/
func TestCreateCategory_RejectsUnknownParent(t *testing.T) {
	service := newTestService(newMockRepository())

	node := &Category{Name: "Orphan", ParentID: pointer.To(int64(999))}
	err := service.CreateCategory(context.Background(), staffActor(), node, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, "parent_id", ae.Details[0].Field)
}

/*
TestCreateCategory_RejectsOverlongMetadata covers the SEO field limits.
*/
func TestCreateCategory_RejectsOverlongMetadata(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Category)
		field  string
	}{
		{"meta_title", func(c *Category) { c.MetaTitle = strings.Repeat("t", 201) }, "meta_title"},
		{"meta_description", func(c *Category) { c.MetaDescription = strings.Repeat("d", 501) }, "meta_description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(newMockRepository())

			node := &Category{Name: "Fiction"}
			tt.mutate(node)

			err := service.CreateCategory(context.Background(), staffActor(), node, nil)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

// # Hierarchy Guards

/*
TestUpdateCategory_RejectsSelfParent guards against a node referencing itself.
*/
func TestUpdateCategory_RejectsSelfParent(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[5] = &Category{ID: 5, Name: "History", Slug: "history"}
	service := newTestService(repository)

	patch := &Category{ID: 5, ParentID: pointer.To(int64(5))}
	err := service.UpdateCategory(context.Background(), staffActor(), patch, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "parent_id", ae.Details[0].Field)
	assert.Nil(t, repository.lastUpdated)
}

/*
TestUpdateCategory_RejectsDescendantParent guards against subtree cycles:
moving a node under one of its own descendants.
*/
func TestUpdateCategory_RejectsDescendantParent(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[1] = &Category{ID: 1, Name: "Science", Slug: "science"}
	repository.nodes[2] = &Category{ID: 2, Name: "Physics", Slug: "physics", ParentID: pointer.To(int64(1))}
	repository.descendants[1] = []int64{2}
	service := newTestService(repository)

	patch := &Category{ID: 1, ParentID: pointer.To(int64(2))}
	err := service.UpdateCategory(context.Background(), staffActor(), patch, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "parent_id", ae.Details[0].Field)
}

/*
TestUpdateCategory_KeepsSlugWhenNameUnchanged guards the stable-URL invariant.
*/
func TestUpdateCategory_KeepsSlugWhenNameUnchanged(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[5] = &Category{ID: 5, Name: "History", Slug: "history"}
	service := newTestService(repository)

	patch := &Category{ID: 5, Name: "History", Description: "World and regional history"}
	require.NoError(t, service.UpdateCategory(context.Background(), staffActor(), patch, nil))

	require.NotNil(t, repository.lastUpdated)
	assert.Empty(t, repository.lastUpdated.Slug)
}

/*
TestUpdateCategory_RegeneratesSlugOnRename verifies slug regeneration.
*/
func TestUpdateCategory_RegeneratesSlugOnRename(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[5] = &Category{ID: 5, Name: "History", Slug: "history"}
	service := newTestService(repository)

	patch := &Category{ID: 5, Name: "Modern History"}
	require.NoError(t, service.UpdateCategory(context.Background(), staffActor(), patch, nil))

	require.NotNil(t, repository.lastUpdated)
	assert.Equal(t, "modern-history", repository.lastUpdated.Slug)
}

// # Deletion Guards

/*
TestDeleteCategory_BlockedByChildren ensures a node with live subcategories
cannot be deleted.
*/
func TestDeleteCategory_BlockedByChildren(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[1] = &Category{ID: 1, Name: "Science", Slug: "science"}
	repository.childCount[1] = 2
	service := newTestService(repository)

	err := service.DeleteCategory(context.Background(), adminActor(), 1)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "BUSINESS_RULE", ae.Code)
	assert.Empty(t, repository.deleted)
}

/*
TestDeleteCategory_BlockedByBooks ensures a node with associated books
cannot be deleted.
*/
func TestDeleteCategory_BlockedByBooks(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[1] = &Category{ID: 1, Name: "Science", Slug: "science"}
	repository.bookCount[1] = 7
	service := newTestService(repository)

	err := service.DeleteCategory(context.Background(), adminActor(), 1)
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", apperr.As(err).Code)
	assert.Empty(t, repository.deleted)
}

/*
TestDeleteCategory_RequiresAdmin ensures librarians cannot delete nodes.
*/
func TestDeleteCategory_RequiresAdmin(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[1] = &Category{ID: 1, Name: "Empty", Slug: "empty"}
	service := newTestService(repository)

	err := service.DeleteCategory(context.Background(), staffActor(), 1)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteCategory(context.Background(), adminActor(), 1))
	assert.Equal(t, []int64{1}, repository.deleted)
}

// # Tree Assembly

/*
TestGetTree_AssemblesHierarchy verifies the single-pass parent/child linking
and that orphaned nodes surface as roots instead of vanishing.
*/
func TestGetTree_AssemblesHierarchy(t *testing.T) {
	repository := newMockRepository()
	repository.nodes[1] = &Category{ID: 1, Name: "Science", Slug: "science", IsActive: true}
	repository.nodes[2] = &Category{ID: 2, Name: "Physics", Slug: "physics", ParentID: pointer.To(int64(1)), IsActive: true}
	repository.nodes[3] = &Category{ID: 3, Name: "Orphan", Slug: "orphan", ParentID: pointer.To(int64(999)), IsActive: true}
	service := newTestService(repository)

	tree, err := service.GetTree(context.Background(), true)
	require.NoError(t, err)

	// Science and the orphan are roots; Physics hangs under Science.
	require.Len(t, tree, 2)

	byName := make(map[string]*Category)
	for _, root := range tree {
		byName[root.Name] = root
	}
	require.Contains(t, byName, "Science")
	require.Contains(t, byName, "Orphan")
	require.Len(t, byName["Science"].Children, 1)
	assert.Equal(t, "Physics", byName["Science"].Children[0].Name)
}
