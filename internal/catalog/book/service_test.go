// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

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
)

// # Test Doubles

// mockRepository implements [Repository] with overridable behaviour per test.
type mockRepository struct {
	books     map[string]*Book
	takenSlug map[string]bool
	takenISBN map[string]bool

	createErr error
	updateErr error

	lastCreated *Book
	lastUpdated *Book
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		books:     make(map[string]*Book),
		takenSlug: make(map[string]bool),
		takenISBN: make(map[string]bool),
	}
}

func (m *mockRepository) List(_ context.Context, _ Filter, _, _ int) ([]*Book, int, error) {
	var all []*Book
	for _, record := range m.books {
		all = append(all, record)
	}
	return all, len(all), nil
}

func (m *mockRepository) FindByID(_ context.Context, id string) (*Book, error) {
	record, ok := m.books[id]
	if !ok {
		return nil, apperr.NotFound("book")
	}
	return record, nil
}

func (m *mockRepository) FindBySlug(_ context.Context, slug string) (*Book, error) {
	for _, record := range m.books {
		if record.Slug == slug {
			return record, nil
		}
	}
	return nil, apperr.NotFound("book")
}

func (m *mockRepository) SlugExists(_ context.Context, slug string, _ string) (bool, error) {
	return m.takenSlug[slug], nil
}

func (m *mockRepository) ISBNExists(_ context.Context, isbn string, _ string) (bool, error) {
	return m.takenISBN[isbn], nil
}

func (m *mockRepository) Create(_ context.Context, record *Book) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCreated = record
	m.books[record.ID] = record
	return nil
}

func (m *mockRepository) Update(_ context.Context, record *Book) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastUpdated = record
	return nil
}

func (m *mockRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := m.books[id]; !ok {
		return apperr.NotFound("book")
	}
	delete(m.books, id)
	return nil
}

func (m *mockRepository) ToggleActive(_ context.Context, id string) (bool, error) {
	record, ok := m.books[id]
	if !ok {
		return false, apperr.NotFound("book")
	}
	record.IsActive = !record.IsActive
	return record.IsActive, nil
}

func (m *mockRepository) ToggleFeatured(_ context.Context, id string) (bool, error) {
	record, ok := m.books[id]
	if !ok {
		return false, apperr.NotFound("book")
	}
	record.IsFeatured = !record.IsFeatured
	return record.IsFeatured, nil
}

func (m *mockRepository) ToggleDownloadable(_ context.Context, id string) (bool, error) {
	record, ok := m.books[id]
	if !ok {
		return false, apperr.NotFound("book")
	}
	record.Downloadable = !record.Downloadable
	return record.Downloadable, nil
}

func (m *mockRepository) IncrementViewCount(_ context.Context, id string, delta int64) error {
	if record, ok := m.books[id]; ok {
		record.ViewCount += delta
	}
	return nil
}

func (m *mockRepository) IncrementDownloadCount(_ context.Context, id string, delta int64) error {
	if record, ok := m.books[id]; ok {
		record.DownloadCount += delta
	}
	return nil
}

// fakeDisk records writes and removals for compensation assertions.
type fakeDisk struct {
	saved   []string
	removed []string
	saveErr error
}

func (d *fakeDisk) Save(dir, extension string, _ io.Reader) (string, error) {
	if d.saveErr != nil {
		return "", d.saveErr
	}
	path := dir + "/generated" + extension
	d.saved = append(d.saved, path)
	return path, nil
}

func (d *fakeDisk) Remove(path string) error {
	d.removed = append(d.removed, path)
	return nil
}

// # Fixtures

func newTestService(repository *mockRepository, disk *fakeDisk) *Service {
	if disk == nil {
		disk = &fakeDisk{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, disk, logger)
}

func staffActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "staff-1", Username: "librarian", Role: sec.RoleLibrarian}
}

func adminActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: sec.RoleAdmin}
}

func memberActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "member-1", Username: "reader", Role: sec.RoleMember}
}

func validBook() *Book {
	return &Book{
		Title:       "Effective Cataloguing",
		BookType:    TypeDigital,
		AccessLevel: AccessFree,
	}
}

// # Creation

/*
TestCreateBook_GeneratesSlug verifies slug derivation from the title.
*/
func TestCreateBook_GeneratesSlug(t *testing.T) {
	repository := newMockRepository()
	service := newTestService(repository, nil)

	record := validBook()
	require.NoError(t, service.CreateBook(context.Background(), staffActor(), record, nil, nil))

	assert.Equal(t, "effective-cataloguing", record.Slug)
	assert.NotEmpty(t, record.ID)
}

/*
TestCreateBook_SlugCollisionSuffix verifies the numeric suffix walk when
the derived slug is taken.
*/
func TestCreateBook_SlugCollisionSuffix(t *testing.T) {
	repository := newMockRepository()
	repository.takenSlug["effective-cataloguing"] = true
	repository.takenSlug["effective-cataloguing-1"] = true
	service := newTestService(repository, nil)

	record := validBook()
	require.NoError(t, service.CreateBook(context.Background(), staffActor(), record, nil, nil))

	assert.Equal(t, "effective-cataloguing-2", record.Slug)
}

/*
TestCreateBook_RejectsMember ensures members cannot create records.
*/
func TestCreateBook_RejectsMember(t *testing.T) {
	repository := newMockRepository()
	service := newTestService(repository, nil)

	err := service.CreateBook(context.Background(), memberActor(), validBook(), nil, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
	assert.Nil(t, repository.lastCreated)
}

/*
TestCreateBook_RejectsAnonymous ensures a nil actor is unauthorized.
*/
func TestCreateBook_RejectsAnonymous(t *testing.T) {
	service := newTestService(newMockRepository(), nil)

	err := service.CreateBook(context.Background(), nil, validBook(), nil, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}

/*
TestCreateBook_ValidationFailures covers the attribute contract.
*/
func TestCreateBook_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Book)
		field  string
	}{
		{"missing_title", func(b *Book) { b.Title = "" }, "title"},
		{"unknown_type", func(b *Book) { b.BookType = "audiobook" }, "book_type"},
		{"unknown_access", func(b *Book) { b.AccessLevel = "vip" }, "access_level"},
		{"zero_pages", func(b *Book) { pages := 0; b.Pages = &pages }, "pages"},
		{
			"unknown_contributor_type",
			func(b *Book) {
				b.ContributorLinks = []ContributorInput{{ContributorID: 1, Type: "producer"}}
			},
			"contributor_links",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(newMockRepository(), nil)

			record := validBook()
			tt.mutate(record)

			err := service.CreateBook(context.Background(), staffActor(), record, nil, nil)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

/*
TestCreateBook_AcceptsFullLengthISBN ensures a hyphenated ISBN-13 at the
column limit passes validation and reaches the store.
*/
func TestCreateBook_AcceptsFullLengthISBN(t *testing.T) {
	repository := newMockRepository()
	service := newTestService(repository, nil)

	record := validBook()
	record.ISBN = "978-0-306-40615-7-XX" // 20 characters

	require.NoError(t, service.CreateBook(context.Background(), staffActor(), record, nil, nil))
	require.NotNil(t, repository.lastCreated)
	assert.Equal(t, record.ISBN, repository.lastCreated.ISBN)
}

/*
TestCreateBook_RejectsExcessAvailableCopies guards the physical holding
invariant: available copies can never exceed the total.
*/
func TestCreateBook_RejectsExcessAvailableCopies(t *testing.T) {
	service := newTestService(newMockRepository(), nil)

	record := validBook()
	record.BookType = TypePhysical
	record.TotalPhysicalCopies = 2
	record.AvailablePhysicalCopies = 3

	err := service.CreateBook(context.Background(), staffActor(), record, nil, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, "available_physical_copies", ae.Details[0].Field)
}

/*
TestCreateBook_DuplicateISBN surfaces a field error instead of a raw conflict.
*/
func TestCreateBook_DuplicateISBN(t *testing.T) {
	repository := newMockRepository()
	repository.takenISBN["978-0-00-000000-2"] = true
	service := newTestService(repository, nil)

	record := validBook()
	record.ISBN = "978-0-00-000000-2"

	err := service.CreateBook(context.Background(), staffActor(), record, nil, nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "isbn", ae.Details[0].Field)
}

/*
TestCreateBook_CompensatesUploadsOnDBFailure verifies that freshly written
files are removed when the database insert fails.
*/
func TestCreateBook_CompensatesUploadsOnDBFailure(t *testing.T) {
	repository := newMockRepository()
	repository.createErr = apperr.Conflict("duplicate")
	disk := &fakeDisk{}
	service := newTestService(repository, disk)

	cover := &Upload{Content: strings.NewReader("img"), Extension: ".jpg"}
	pdf := &Upload{Content: strings.NewReader("doc"), Extension: ".pdf"}

	err := service.CreateBook(context.Background(), staffActor(), validBook(), cover, pdf)
	require.Error(t, err)

	// Both files were written, then both were compensated.
	require.Len(t, disk.saved, 2)
	assert.ElementsMatch(t, disk.saved, disk.removed)
}

// # Updates

/*
TestUpdateBook_KeepsSlugWhenTitleUnchanged guards the stable-URL invariant.
*/
func TestUpdateBook_KeepsSlugWhenTitleUnchanged(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", Title: "Effective Cataloguing", Slug: "effective-cataloguing"}
	service := newTestService(repository, nil)

	patch := &Book{ID: "b1", Title: "Effective Cataloguing", Description: "Second edition notes"}
	require.NoError(t, service.UpdateBook(context.Background(), staffActor(), patch, nil, nil))

	// An empty slug on the update entity leaves the stored slug untouched.
	require.NotNil(t, repository.lastUpdated)
	assert.Empty(t, repository.lastUpdated.Slug)
}

/*
TestUpdateBook_RegeneratesSlugOnTitleChange verifies slug regeneration,
including collision handling against other records.
*/
func TestUpdateBook_RegeneratesSlugOnTitleChange(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", Title: "Old Title", Slug: "old-title"}
	repository.takenSlug["new-title"] = true
	service := newTestService(repository, nil)

	patch := &Book{ID: "b1", Title: "New Title"}
	require.NoError(t, service.UpdateBook(context.Background(), staffActor(), patch, nil, nil))

	require.NotNil(t, repository.lastUpdated)
	assert.Equal(t, "new-title-1", repository.lastUpdated.Slug)
}

/*
TestUpdateBook_ReplacesCoverAfterCommit ensures the stale asset is removed
only after the database update succeeded.
*/
func TestUpdateBook_ReplacesCoverAfterCommit(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", Title: "Kept", Slug: "kept", CoverImagePath: "covers/old.jpg"}
	disk := &fakeDisk{}
	service := newTestService(repository, disk)

	cover := &Upload{Content: strings.NewReader("img"), Extension: ".png"}
	require.NoError(t, service.UpdateBook(context.Background(), staffActor(), &Book{ID: "b1"}, cover, nil))

	require.Len(t, disk.saved, 1)
	assert.Contains(t, disk.removed, "covers/old.jpg")
	assert.Equal(t, disk.saved[0], repository.lastUpdated.CoverImagePath)
}

/*
TestUpdateBook_KeepsStaleCoverOnDBFailure ensures the previous asset
survives when the update fails, while the new file is compensated.
*/
func TestUpdateBook_KeepsStaleCoverOnDBFailure(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", Title: "Kept", Slug: "kept", CoverImagePath: "covers/old.jpg"}
	repository.updateErr = apperr.Internal(assert.AnError)
	disk := &fakeDisk{}
	service := newTestService(repository, disk)

	cover := &Upload{Content: strings.NewReader("img"), Extension: ".png"}
	err := service.UpdateBook(context.Background(), staffActor(), &Book{ID: "b1"}, cover, nil)
	require.Error(t, err)

	assert.NotContains(t, disk.removed, "covers/old.jpg")
	assert.Contains(t, disk.removed, disk.saved[0])
}

// # Deletion & Toggles

/*
TestDeleteBook_RequiresAdmin ensures librarians cannot delete records.
*/
func TestDeleteBook_RequiresAdmin(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1"}
	service := newTestService(repository, nil)

	err := service.DeleteBook(context.Background(), staffActor(), "b1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteBook(context.Background(), adminActor(), "b1"))
}

/*
TestToggleActive_FlipsAndReturnsState checks the round-trip toggle contract.
*/
func TestToggleActive_FlipsAndReturnsState(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", IsActive: true}
	service := newTestService(repository, nil)

	state, err := service.ToggleActive(context.Background(), staffActor(), "b1")
	require.NoError(t, err)
	assert.False(t, state)

	state, err = service.ToggleActive(context.Background(), staffActor(), "b1")
	require.NoError(t, err)
	assert.True(t, state)
}

/*
TestToggleDownloadable_FlipsAndReturnsState checks the download permission
toggle round-trip.
*/
func TestToggleDownloadable_FlipsAndReturnsState(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1", Downloadable: true}
	service := newTestService(repository, nil)

	state, err := service.ToggleDownloadable(context.Background(), staffActor(), "b1")
	require.NoError(t, err)
	assert.False(t, state)

	state, err = service.ToggleDownloadable(context.Background(), staffActor(), "b1")
	require.NoError(t, err)
	assert.True(t, state)
}

/*
TestToggleFeatured_RejectsMember guards the staff-only toggle.
*/
func TestToggleFeatured_RejectsMember(t *testing.T) {
	repository := newMockRepository()
	repository.books["b1"] = &Book{ID: "b1"}
	service := newTestService(repository, nil)

	_, err := service.ToggleFeatured(context.Background(), memberActor(), "b1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}
