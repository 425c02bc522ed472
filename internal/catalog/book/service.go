// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"io"
	"log/slog"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/storage"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/pkg/slug"
	"github.com/taibuivan/biblio/pkg/uuid"
)

// # Service Layer

// Upload carries a pending file upload into the service layer.
type Upload struct {
	Content   io.Reader
	Extension string
}

// Service orchestrates the business logic for the book catalogue.
//
// Every mutating method takes the acting staff member explicitly as its
// first domain parameter. Authorization is part of each operation's
// contract, not something fished out of ambient request state.
type Service struct {
	repository Repository
	disk       storage.Store
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, disk storage.Store, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		disk:       disk,
		logger:     logger,
	}
}

// # Catalogue Lookups

/*
ListBooks retrieves a paginated and filtered collection of books.

Description: This method orchestrates the discovery phase of the catalogue.
It passes filter criteria directly to the repository layer for efficient
database-level filtering and sorting.

Parameters:
  - context: context.Context
  - filter: Filter (Criteria for type, access level, categories, search)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Book: Slice of matching catalogue records
  - int: Total count of records matching the filter (for pagination metadata)
  - error: System or repository level errors
*/
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

/*
GetBook fetches a single catalogue record by UUID or SEO Slug.

Description: The service determines the lookup strategy from the identifier
format. If it matches the UUID shape, a primary key lookup is used;
otherwise it resolves via the unique URL slug.

Parameters:
  - context: context.Context
  - identifier: string (UUID or Slug)

Returns:
  - *Book: The hydrated domain entity
  - error: NOT_FOUND if no match is found
*/
func (service *Service) GetBook(context context.Context, identifier string) (*Book, error) {

	// Identity format detection
	if uuid.IsValid(identifier) {
		return service.repository.FindByID(context, identifier)
	}

	// Slug resolution
	return service.repository.FindBySlug(context, identifier)
}

/*
RecordView bumps the view counter for a public catalogue page hit.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: Counter update failures
*/
func (service *Service) RecordView(context context.Context, id string) error {
	return service.repository.IncrementViewCount(context, id, 1)
}

/*
RecordDownload bumps the download counter when a member fetches the PDF.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: Counter update failures
*/
func (service *Service) RecordDownload(context context.Context, id string) error {
	return service.repository.IncrementDownloadCount(context, id, 1)
}

// # Record Management

/*
CreateBook initialises a new catalogue record.

Description: The operation runs in a fixed order: authorization, metadata
validation, identity and slug generation, file persistence, and finally the
database write. Files are written to disk BEFORE the database insert; if the
insert fails, the freshly written files are removed again so no orphaned
assets accumulate on the public disk.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - book: *Book (The entity to be persisted)
  - cover: *Upload (Optional cover image)
  - pdf: *Upload (Optional digital asset)

Returns:
  - error: FORBIDDEN, validation, or persistence errors
*/
func (service *Service) CreateBook(ctx context.Context, actor *sec.AuthClaims, book *Book, cover, pdf *Upload) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Business attribute validation
	if err := service.validateCreate(book); err != nil {
		return err
	}

	// Identity generation
	if book.ID == "" {
		book.ID = uuid.New()
	}

	// SEO slug generation with collision retry
	generatedSlug, err := slug.Unique(ctx, slug.From(book.Title), func(slugCtx context.Context, candidate string) (bool, error) {
		return service.repository.SlugExists(slugCtx, candidate, book.ID)
	})
	if err != nil {
		return err
	}
	book.Slug = generatedSlug

	// ISBN uniqueness pre-check (surfaces a field error instead of a raw conflict)
	if book.ISBN != "" {
		taken, err := service.repository.ISBNExists(ctx, book.ISBN, book.ID)
		if err != nil {
			return err
		}
		if taken {
			return validate.RequiredError(FieldISBN, "This ISBN is already registered")
		}
	}

	// File persistence (before the database write)
	savedPaths, err := service.storeUploads(book, cover, pdf)
	if err != nil {
		return err
	}

	// Persistence via Repository, compensating the disk on failure
	if err := service.repository.Create(ctx, book); err != nil {
		service.compensateUploads(savedPaths)
		return err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
UpdateBook applies modifications to an existing catalogue record.

Description: Supports partial updates; non-empty fields overwrite existing
values. The slug is regenerated ONLY when the title actually changed, so
stable catalogue URLs survive metadata edits. Replacement files follow the
same write-then-persist order as creation: new files are written first,
removed again if the database update fails, and the files they replace are
deleted only after the update has committed.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - book: *Book (Target UUID and updated attributes)
  - cover: *Upload (Optional replacement cover)
  - pdf: *Upload (Optional replacement asset)

Returns:
  - error: FORBIDDEN, NOT_FOUND, validation, or persistence errors
*/
func (service *Service) UpdateBook(ctx context.Context, actor *sec.AuthClaims, book *Book, cover, pdf *Upload) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Load the stored record for slug retention and asset replacement
	existing, err := service.repository.FindByID(ctx, book.ID)
	if err != nil {
		return err
	}

	// Integrity validation for updated fields
	if err := service.validateUpdate(book); err != nil {
		return err
	}

	// Slug retention: regenerate only when the title changed
	book.Slug = ""
	if book.Title != "" && book.Title != existing.Title {
		regenerated, err := slug.Unique(ctx, slug.From(book.Title), func(slugCtx context.Context, candidate string) (bool, error) {
			return service.repository.SlugExists(slugCtx, candidate, book.ID)
		})
		if err != nil {
			return err
		}
		book.Slug = regenerated
	}

	// ISBN uniqueness pre-check on change
	if book.ISBN != "" && book.ISBN != existing.ISBN {
		taken, err := service.repository.ISBNExists(ctx, book.ISBN, book.ID)
		if err != nil {
			return err
		}
		if taken {
			return validate.RequiredError(FieldISBN, "This ISBN is already registered")
		}
	}

	// Replacement file persistence
	savedPaths, err := service.storeUploads(book, cover, pdf)
	if err != nil {
		return err
	}

	// Database write, compensating the disk on failure
	if err := service.repository.Update(ctx, book); err != nil {
		service.compensateUploads(savedPaths)
		return err
	}

	// Old assets are removed only after the update has committed.
	if cover != nil && existing.CoverImagePath != "" {
		if err := service.disk.Remove(existing.CoverImagePath); err != nil {
			service.logger.Warn("book_stale_cover_cleanup_failed",
				slog.String("book_id", book.ID), slog.Any("error", err))
		}
	}
	if pdf != nil && existing.PDFPath != "" {
		if err := service.disk.Remove(existing.PDFPath); err != nil {
			service.logger.Warn("book_stale_pdf_cleanup_failed",
				slog.String("book_id", book.ID), slog.Any("error", err))
		}
	}

	service.logger.Info("book_updated",
		slog.String("book_id", book.ID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
DeleteBook removes a book from active discovery.

Description: Implements soft-delete logic; the record and its disk assets
remain for auditing and potential restoration. Deletion is an admin-only
capability.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the delete capability)
  - id: string (UUID)

Returns:
  - error: FORBIDDEN or persistence errors
*/
func (service *Service) DeleteBook(context context.Context, actor *sec.AuthClaims, id string) error {

	// Deletion requires the stronger capability
	if actor == nil || !actor.Role.CanDeleteRecords() {
		return apperr.Forbidden("Insufficient permissions")
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("book_deleted",
		slog.String("book_id", id),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
ToggleActive flips a book's public visibility and returns the new state.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - id: string (UUID)

Returns:
  - bool: The visibility state after the flip
  - error: FORBIDDEN or persistence errors
*/
func (service *Service) ToggleActive(context context.Context, actor *sec.AuthClaims, id string) (bool, error) {
	if err := requireCatalogManager(actor); err != nil {
		return false, err
	}

	state, err := service.repository.ToggleActive(context, id)
	if err != nil {
		return false, err
	}

	service.logger.Info("book_active_toggled",
		slog.String("book_id", id),
		slog.Bool("is_active", state),
		slog.String("actor_id", actor.UserID),
	)

	return state, nil
}

/*
ToggleFeatured flips a book's homepage shelf flag and returns the new state.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - id: string (UUID)

Returns:
  - bool: The featured state after the flip
  - error: FORBIDDEN or persistence errors
*/
func (service *Service) ToggleFeatured(context context.Context, actor *sec.AuthClaims, id string) (bool, error) {
	if err := requireCatalogManager(actor); err != nil {
		return false, err
	}

	state, err := service.repository.ToggleFeatured(context, id)
	if err != nil {
		return false, err
	}

	service.logger.Info("book_featured_toggled",
		slog.String("book_id", id),
		slog.Bool("is_featured", state),
		slog.String("actor_id", actor.UserID),
	)

	return state, nil
}

/*
ToggleDownloadable flips whether the book's PDF may be fetched by members
and returns the new state.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - id: string (UUID)

Returns:
  - bool: The download permission after the flip
  - error: FORBIDDEN or persistence errors
*/
func (service *Service) ToggleDownloadable(context context.Context, actor *sec.AuthClaims, id string) (bool, error) {
	if err := requireCatalogManager(actor); err != nil {
		return false, err
	}

	state, err := service.repository.ToggleDownloadable(context, id)
	if err != nil {
		return false, err
	}

	service.logger.Info("book_downloadable_toggled",
		slog.String("book_id", id),
		slog.Bool("downloadable", state),
		slog.String("actor_id", actor.UserID),
	)

	return state, nil
}

// # Internal Helpers

// requireCatalogManager gates create/edit operations on the actor's capability.
func requireCatalogManager(actor *sec.AuthClaims) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if !actor.Role.CanManageCatalog() {
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}

// validateCreate enforces the full attribute contract for new records.
func (service *Service) validateCreate(book *Book) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, book.Title).MaxLen(FieldTitle, book.Title, 500)

	// Holding form validation
	validator.Required(FieldBookType, string(book.BookType)).OneOf(FieldBookType, string(book.BookType),
		string(TypeDigital),
		string(TypePhysical),
		string(TypeBoth),
	)

	// Access policy validation
	validator.Required(FieldAccessLevel, string(book.AccessLevel)).OneOf(FieldAccessLevel, string(book.AccessLevel),
		string(AccessFree),
		string(AccessPremium),
		string(AccessInstitutional),
	)

	// Legal standing validation
	if book.CopyrightStatus == "" {
		book.CopyrightStatus = CopyrightUnknown
	}
	validator.Custom(FieldCopyrightStatus, !book.CopyrightStatus.IsValid(), "Unknown copyright status")
	validator.MaxLen(FieldLicenseType, book.LicenseType, 100)

	// Optional numeric bounds
	if book.Pages != nil {
		validator.Min(FieldPages, *book.Pages, 1)
	}
	if book.ISBN != "" {
		validator.MaxLen(FieldISBN, book.ISBN, 20)
	}

	// Physical holding counters
	validator.Min(FieldTotalCopies, book.TotalPhysicalCopies, 0)
	validator.Min(FieldAvailableCopies, book.AvailablePhysicalCopies, 0)
	validator.Custom(FieldAvailableCopies,
		book.AvailablePhysicalCopies > book.TotalPhysicalCopies,
		"Available copies cannot exceed the total holding")

	// Contributor credit shape
	validator.Custom(FieldContributors, hasInvalidContributorType(book.ContributorLinks), "Unknown contributor type")

	return validator.Err()
}

// validateUpdate enforces constraints only on the fields being changed.
func (service *Service) validateUpdate(book *Book) error {
	validator := &validate.Validator{}

	if book.Title != "" {
		validator.MaxLen(FieldTitle, book.Title, 500)
	}
	if book.BookType != "" {
		validator.Custom(FieldBookType, !book.BookType.IsValid(), "Unknown book type")
	}
	if book.AccessLevel != "" {
		validator.Custom(FieldAccessLevel, !book.AccessLevel.IsValid(), "Unknown access level")
	}
	if book.CopyrightStatus != "" {
		validator.Custom(FieldCopyrightStatus, !book.CopyrightStatus.IsValid(), "Unknown copyright status")
	}
	if book.Pages != nil {
		validator.Min(FieldPages, *book.Pages, 1)
	}
	if book.ISBN != "" {
		validator.MaxLen(FieldISBN, book.ISBN, 20)
	}
	validator.MaxLen(FieldLicenseType, book.LicenseType, 100)
	validator.Min(FieldTotalCopies, book.TotalPhysicalCopies, 0)
	validator.Min(FieldAvailableCopies, book.AvailablePhysicalCopies, 0)
	validator.Custom(FieldContributors, hasInvalidContributorType(book.ContributorLinks), "Unknown contributor type")

	return validator.Err()
}

// hasInvalidContributorType reports whether any credit carries an unknown role.
func hasInvalidContributorType(links []ContributorInput) bool {
	for _, link := range links {
		if !link.Type.IsValid() {
			return true
		}
	}
	return false
}

// storeUploads writes pending files onto the disk and stamps their paths
// into the entity. It returns the paths written so a failed database write
// can be compensated.
func (service *Service) storeUploads(book *Book, cover, pdf *Upload) ([]string, error) {
	var saved []string

	if cover != nil {
		path, err := service.disk.Save(constants.UploadDirCovers, cover.Extension, cover.Content)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		saved = append(saved, path)
		book.CoverImagePath = path
	}

	if pdf != nil {
		path, err := service.disk.Save(constants.UploadDirBooks, pdf.Extension, pdf.Content)
		if err != nil {
			// A cover written moments ago must not be orphaned either.
			service.compensateUploads(saved)
			return nil, apperr.Internal(err)
		}
		saved = append(saved, path)
		book.PDFPath = path
	}

	return saved, nil
}

// compensateUploads removes files written during a workflow whose database
// step failed. Cleanup failures are logged, never surfaced: the caller's
// original error is the one that matters.
func (service *Service) compensateUploads(paths []string) {
	for _, path := range paths {
		if err := service.disk.Remove(path); err != nil {
			service.logger.Warn("upload_compensation_failed",
				slog.String("path", path), slog.Any("error", err))
		}
	}
}
