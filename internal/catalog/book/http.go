// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book provides the HTTP interface for browsing and managing the catalogue.

It exposes endpoints for the public catalogue surface and for the staff
management surface.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /catalog/books).
  - Staff (v1): Mutative endpoints requiring catalogue management capability.

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package book

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/middleware"
	requestutil "github.com/taibuivan/biblio/internal/platform/request"
	"github.com/taibuivan/biblio/internal/platform/respond"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/pkg/convert"
	"github.com/taibuivan/biblio/pkg/pagination"
	"github.com/taibuivan/biblio/pkg/pointer"
	"github.com/taibuivan/biblio/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue browsing and management.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PublicRoutes returns a [chi.Router] with the visitor-facing catalogue endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listPublic)
	router.Get("/{identifier}", handler.getPublic)
	router.Post("/{id}/download", handler.recordDownload)

	return router
}

// AdminRoutes returns a [chi.Router] with the staff management endpoints.
//
// # Routing Strategy
//
// The whole group is gated on the catalogue management capability; record
// deletion additionally requires the delete capability, enforced by the
// service layer.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanManageCatalog))

	router.Get("/", handler.listAdmin)
	router.Post("/", handler.createBook)
	router.Get("/{identifier}", handler.getAdmin)
	router.Patch("/{id}", handler.updateBook)
	router.Delete("/{id}", handler.deleteBook)

	// Visibility and distribution toggles
	router.Patch("/{id}/toggle-active", handler.toggleActive)
	router.Patch("/{id}/toggle-featured", handler.toggleFeatured)
	router.Patch("/{id}/toggle-downloadable", handler.toggleDownloadable)

	// Asset replacement
	router.Put("/{id}/cover", handler.uploadCover)
	router.Put("/{id}/pdf", handler.uploadPDF)

	return router
}

// # Public Endpoints

/*
GET /api/v1/catalog/books.

Description: Retrieves a paginated list of ACTIVE books from the catalogue.
Supports filtering by type, access level, categories, language, and search.

Request:
  - q: string (Title/ISBN search)
  - type: []string (digital, physical, both)
  - access: []string (free, premium, institutional)
  - category: []int64
  - publisher: int64
  - language: string (ISO-639-1)
  - year: int
  - featured: bool (Homepage shelf only)
  - sort: string (latest, popular, downloads, az, za)
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Book: Paginated list of books
*/
func (handler *Handler) listPublic(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := filterFromQuery(request)
	filter.IsActive = pointer.To(true)

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/catalog/books/{identifier}.

Description: Retrieves detailed metadata for a book using either its UUID or
unique slug, and bumps the record's view counter.

Request:
  - identifier: string (UUID or Slug)

Response:
  - 200: Book: Success
  - 404: 404: ErrNotFound: Book not found or not publicly visible
*/
func (handler *Handler) getPublic(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	record, err := handler.service.GetBook(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Hidden records do not exist on the public surface.
	if !record.IsActive {
		respond.Error(writer, request, apperr.NotFound("book"))
		return
	}

	// Page-hit analytics; failure never blocks the response.
	_ = handler.service.RecordView(request.Context(), record.ID)

	respond.OK(writer, record)
}

/*
POST /api/v1/catalog/books/{id}/download.

Description: Records a PDF download event for usage analytics.

Request:
  - id: string (UUID)

Response:
  - 204: No Content: Counter recorded
*/
func (handler *Handler) recordDownload(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	if err := handler.service.RecordDownload(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Request Payloads

// bookRequest defines the inbound JSON schema shared by record creation and
// partial updates. Boolean state flags are deliberately absent: a PATCH
// cannot express "leave untouched" for them, so they live on the creation
// payload and the dedicated toggle endpoints instead.
type bookRequest struct {
	Title                   string             `json:"title"`
	Subtitle                string             `json:"subtitle"`
	ISBN                    string             `json:"isbn"`
	Description             string             `json:"description"`
	PublisherID             *int64             `json:"publisher_id"`
	LanguageCode            string             `json:"language_code"`
	PublicationYear         *int16             `json:"publication_year"`
	Pages                   *int               `json:"pages"`
	BookType                Type               `json:"book_type"`
	AccessLevel             AccessLevel        `json:"access_level"`
	CopyrightStatus         CopyrightStatus    `json:"copyright_status"`
	LicenseType             string             `json:"license_type"`
	PublishedAt             *time.Time         `json:"published_at"`
	TotalPhysicalCopies     *int               `json:"total_physical_copies"`
	AvailablePhysicalCopies *int               `json:"available_physical_copies"`
	CategoryIDs             []int64            `json:"category_ids"`
	ContributorLinks        []ContributorInput `json:"contributor_links"`
}

// bookCreateRequest extends the shared payload with the initial state flags,
// which are settable on creation only.
type bookCreateRequest struct {
	bookRequest
	IsActive     *bool `json:"is_active"`
	IsFeatured   *bool `json:"is_featured"`
	Downloadable *bool `json:"downloadable"`
}

// toEntity maps the payload onto a domain entity.
func (input *bookRequest) toEntity(id string) *Book {
	return &Book{
		ID:                      id,
		Title:                   input.Title,
		Subtitle:                input.Subtitle,
		ISBN:                    input.ISBN,
		Description:             input.Description,
		PublisherID:             input.PublisherID,
		LanguageCode:            input.LanguageCode,
		PublicationYear:         input.PublicationYear,
		Pages:                   input.Pages,
		BookType:                input.BookType,
		AccessLevel:             input.AccessLevel,
		CopyrightStatus:         input.CopyrightStatus,
		LicenseType:             input.LicenseType,
		PublishedAt:             input.PublishedAt,
		TotalPhysicalCopies:     pointer.Val(input.TotalPhysicalCopies),
		AvailablePhysicalCopies: pointer.Val(input.AvailablePhysicalCopies),
		CategoryIDs:             input.CategoryIDs,
		ContributorLinks:        input.ContributorLinks,
	}
}

// # Staff Endpoints

/*
GET /api/v1/admin/catalog/books.

Description: Retrieves the staff book listing, which includes inactive
records. Page size is fixed for the admin table layout.

Request:
  - Shared catalogue filters (see filterFromQuery)
  - status: string ("1" active only, "0" inactive only, absent for all)

Response:
  - 200: []Book: Paginated list of books
*/
func (handler *Handler) listAdmin(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequestDefault(request, constants.BooksPageSize)

	filter := filterFromQuery(request)

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/admin/catalog/books/{identifier}.

Description: Retrieves a record for editing, regardless of visibility state.

Response:
  - 200: Book: Success
  - 404: 404: ErrNotFound: Book not found
*/
func (handler *Handler) getAdmin(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	record, err := handler.service.GetBook(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
POST /api/v1/admin/catalog/books.

Description: Creates a new catalogue record. Slugs are generated from the
title with automatic collision suffixes. Omitted state flags default to an
active, downloadable, non-featured record.

Request (Body):
  - bookCreateRequest: JSON object

Response:
  - 201: Book: Created record
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input bookCreateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := input.toEntity("")
	record.IsActive = pointer.Fallback(input.IsActive, true)
	record.IsFeatured = pointer.Val(input.IsFeatured)
	record.Downloadable = pointer.Fallback(input.Downloadable, true)

	if err := handler.service.CreateBook(request.Context(), actor, record, nil, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
PATCH /api/v1/admin/catalog/books/{id}.

Description: Applies partial updates to an existing record. Clients provide
only the fields that need to change; a nil category_ids leaves associations
untouched while an empty array clears them. State flags (is_active,
is_featured, downloadable) are not part of the update payload; they are
managed through the toggle endpoints.

Request:
  - id: string (UUID)
  - body: bookRequest (Partial JSON)

Response:
  - 200: Book: Updated record
  - 404: 404: ErrNotFound: Book not found
*/
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	bookID := requestutil.ID(request, "id")

	var input bookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := input.toEntity(bookID)
	if err := handler.service.UpdateBook(request.Context(), actor, record, nil, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Return the stored state, including untouched fields.
	updated, err := handler.service.GetBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/admin/catalog/books/{id}.

Description: Performs a soft-delete of the record. Requires the delete
capability (administrators only).

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Book not found
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	bookID := requestutil.ID(request, "id")

	if err := handler.service.DeleteBook(request.Context(), actor, bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/admin/catalog/books/{id}/toggle-active.

Description: Flips the record's public visibility and returns the new state.

Response:
  - 200: {"is_active": bool}
*/
func (handler *Handler) toggleActive(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	bookID := requestutil.ID(request, "id")

	state, err := handler.service.ToggleActive(request.Context(), actor, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_active": state})
}

/*
PATCH /api/v1/admin/catalog/books/{id}/toggle-featured.

Description: Flips the record's homepage shelf flag and returns the new state.

Response:
  - 200: {"is_featured": bool}
*/
func (handler *Handler) toggleFeatured(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	bookID := requestutil.ID(request, "id")

	state, err := handler.service.ToggleFeatured(request.Context(), actor, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_featured": state})
}

/*
PATCH /api/v1/admin/catalog/books/{id}/toggle-downloadable.

Description: Flips whether members may fetch the record's PDF and returns
the new state.

Response:
  - 200: {"downloadable": bool}
*/
func (handler *Handler) toggleDownloadable(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	bookID := requestutil.ID(request, "id")

	state, err := handler.service.ToggleDownloadable(request.Context(), actor, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"downloadable": state})
}

// # Asset Endpoints

/*
PUT /api/v1/admin/catalog/books/{id}/cover.

Description: Replaces the record's cover image via multipart upload. The new
file is written before the database update; the previous cover is removed
only after the update commits.

Request (multipart/form-data):
  - cover_image: file (jpg, jpeg, png, webp; max 2 MB)

Response:
  - 200: Book: Updated record
*/
func (handler *Handler) uploadCover(writer http.ResponseWriter, request *http.Request) {
	handler.uploadAsset(writer, request, assetSpec{
		field:      FieldCoverImage,
		formKey:    "cover_image",
		maxBytes:   constants.MaxCoverImageBytes,
		extensions: []string{".jpg", ".jpeg", ".png", ".webp"},
	})
}

/*
PUT /api/v1/admin/catalog/books/{id}/pdf.

Description: Replaces the record's digital asset via multipart upload.

Request (multipart/form-data):
  - pdf_file: file (pdf; max 50 MB)

Response:
  - 200: Book: Updated record
*/
func (handler *Handler) uploadPDF(writer http.ResponseWriter, request *http.Request) {
	handler.uploadAsset(writer, request, assetSpec{
		field:      FieldPDFFile,
		formKey:    "pdf_file",
		maxBytes:   constants.MaxPDFBytes,
		extensions: []string{".pdf"},
	})
}

// assetSpec describes one uploadable asset slot on a record.
type assetSpec struct {
	field      string
	formKey    string
	maxBytes   int64
	extensions []string
}

// uploadAsset is the shared multipart pipeline behind the asset endpoints.
func (handler *Handler) uploadAsset(writer http.ResponseWriter, request *http.Request, spec assetSpec) {
	actor := requestutil.Actor(request)
	bookID := requestutil.ID(request, "id")

	// Bound the in-memory form parse to the allowed asset size.
	request.Body = http.MaxBytesReader(writer, request.Body, spec.maxBytes)
	if err := request.ParseMultipartForm(spec.maxBytes); err != nil {
		respond.Error(writer, request, validate.RequiredError(spec.field, "File missing or exceeds the size limit"))
		return
	}

	file, header, err := request.FormFile(spec.formKey)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(spec.field, "File is required"))
		return
	}
	defer file.Close()

	extension := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtension(extension, spec.extensions) {
		respond.Error(writer, request, validate.RequiredError(spec.field, "Unsupported file type"))
		return
	}

	upload := &Upload{Content: file, Extension: extension}

	var cover, pdf *Upload
	if spec.field == FieldCoverImage {
		cover = upload
	} else {
		pdf = upload
	}

	if err := handler.service.UpdateBook(request.Context(), actor, &Book{ID: bookID}, cover, pdf); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.GetBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// # Helpers

// allowedExtension reports whether the extension is in the allow-list.
func allowedExtension(extension string, allowed []string) bool {
	for _, candidate := range allowed {
		if extension == candidate {
			return true
		}
	}
	return false
}

/*
filterFromQuery maps the shared query parameters onto a [Filter].

Parameters:
  - request: *http.Request

Returns:
  - Filter: Populated filter criteria
*/
func filterFromQuery(request *http.Request) Filter {
	queryParams := request.URL.Query()

	filter := Filter{
		Query:        queryParams.Get("q"),
		BookType:     parseTypeSlice(queryParams["type"]),
		AccessLevel:  parseAccessSlice(queryParams["access"]),
		CategoryIDs:  query.Int64Slice(queryParams["category"]),
		LanguageCode: queryParams.Get("language"),
		OnlyFeatured: convert.ToBool(queryParams.Get("featured")),
		Sort:         queryParams.Get("sort"),
		SortDir:      queryParams.Get("dir"),
	}

	if publisherID, err := strconv.ParseInt(queryParams.Get("publisher"), 10, 64); err == nil {
		filter.PublisherID = &publisherID
	}

	if year, err := strconv.Atoi(queryParams.Get("year")); err == nil {
		y := int16(year)
		filter.Year = &y
	}

	// Tri-state visibility filter for the staff table; the public listing
	// overrides this to active-only after parsing.
	switch queryParams.Get("status") {
	case "1":
		filter.IsActive = pointer.To(true)
	case "0":
		filter.IsActive = pointer.To(false)
	}

	return filter
}

/*
parseTypeSlice converts a slice of strings to a slice of Type, dropping
unknown values.

Parameters:
  - values: A slice of strings to convert.

Returns:
  - A slice of Type.
*/
func parseTypeSlice(values []string) []Type {
	var result []Type
	for _, value := range values {
		bookType := Type(value)
		if bookType.IsValid() {
			result = append(result, bookType)
		}
	}
	return result
}

/*
parseAccessSlice converts a slice of strings to a slice of AccessLevel,
dropping unknown values.

Parameters:
  - values: A slice of strings to convert.

Returns:
  - A slice of AccessLevel.
*/
func parseAccessSlice(values []string) []AccessLevel {
	var result []AccessLevel
	for _, value := range values {
		level := AccessLevel(value)
		if level.IsValid() {
			result = append(result, level)
		}
	}
	return result
}
