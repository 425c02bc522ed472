// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

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
)

// # Handler Implementation

// Handler implements the HTTP layer for browsing and managing the tree.
type Handler struct {
	service *Service
}

// NewHandler constructs a new category [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PublicRoutes returns a [chi.Router] with the visitor-facing tree endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getTreePublic)
	router.Get("/{identifier}", handler.getPublic)

	return router
}

// AdminRoutes returns a [chi.Router] with the staff management endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanManageCatalog))

	router.Get("/", handler.listAdmin)
	router.Get("/tree", handler.getTreeAdmin)
	router.Post("/", handler.createCategory)
	router.Get("/{identifier}", handler.getAdmin)
	router.Patch("/{id}", handler.updateCategory)
	router.Delete("/{id}", handler.deleteCategory)

	// Visibility toggle
	router.Patch("/{id}/toggle-active", handler.toggleActive)

	// Asset replacement
	router.Put("/{id}/image", handler.uploadImage)

	return router
}

// # Public Endpoints

/*
GET /api/v1/catalog/categories.

Description: Returns the full ACTIVE classification tree as nested nodes.
The public navigation renders this in one request, so no pagination applies.

Response:
  - 200: []Category: Root nodes with nested children and book counts
*/
func (handler *Handler) getTreePublic(writer http.ResponseWriter, request *http.Request) {
	tree, err := handler.service.GetTree(request.Context(), true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tree)
}

/*
GET /api/v1/catalog/categories/{identifier}.

Description: Retrieves a single category using its numeric ID or unique slug.

Response:
  - 200: Category: Success
  - 404: 404: ErrNotFound: Category not found or hidden
*/
func (handler *Handler) getPublic(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	node, err := handler.service.GetCategory(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Hidden nodes do not exist on the public surface.
	if !node.IsActive {
		respond.Error(writer, request, apperr.NotFound("category"))
		return
	}

	respond.OK(writer, node)
}

// # Request Payloads

// categoryRequest defines the inbound JSON schema shared by node creation
// and partial updates. The visibility flag is deliberately absent: a PATCH
// cannot express "leave untouched" for it, so it lives on the creation
// payload and the toggle endpoint instead.
type categoryRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	ParentID        *int64 `json:"parent_id"`
	SortOrder       int    `json:"sort_order"`
}

// categoryCreateRequest extends the shared payload with the initial
// visibility flag, settable on creation only.
type categoryCreateRequest struct {
	categoryRequest
	IsActive *bool `json:"is_active"`
}

// toEntity maps the payload onto a domain entity.
func (input *categoryRequest) toEntity(id int64) *Category {
	return &Category{
		ID:              id,
		Name:            input.Name,
		Description:     input.Description,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		ParentID:        input.ParentID,
		SortOrder:       input.SortOrder,
	}
}

// # Staff Endpoints

/*
GET /api/v1/admin/catalog/categories.

Description: Retrieves the staff category listing as a flat paginated table,
including inactive nodes. Page size is fixed for the admin table layout.

Request:
  - q: string (Name/description search)
  - parent: int64 (Direct children of a node)
  - root: bool (Root nodes only)
  - type: string ("parent"/"root" for root nodes, "child" for nested nodes)
  - status: string ("1" active only, "0" inactive only, absent for all)
  - limit: int
  - page: int

Response:
  - 200: []Category: Paginated flat list
*/
func (handler *Handler) listAdmin(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequestDefault(request, constants.CategoriesPageSize)

	filter := filterFromQuery(request)

	categories, total, err := handler.service.ListCategories(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, categories, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/admin/catalog/categories/tree.

Description: Returns the full tree including inactive nodes, used by the
re-parenting picker in the management console.

Response:
  - 200: []Category: Root nodes with nested children
*/
func (handler *Handler) getTreeAdmin(writer http.ResponseWriter, request *http.Request) {
	tree, err := handler.service.GetTree(request.Context(), false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tree)
}

/*
GET /api/v1/admin/catalog/categories/{identifier}.

Description: Retrieves a node for editing, regardless of visibility state.

Response:
  - 200: Category: Success
  - 404: 404: ErrNotFound: Category not found
*/
func (handler *Handler) getAdmin(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	node, err := handler.service.GetCategory(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, node)
}

/*
POST /api/v1/admin/catalog/categories.

Description: Creates a new tree node. Slugs are generated from the name with
automatic collision suffixes; omitted sort orders shelve the node last among
its siblings.

Request (Body):
  - categoryRequest: JSON object

Response:
  - 201: Category: Created node
  - 400: 400: ErrInvalidJSON/Validation: Invalid input or parent reference
  - 403: 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input categoryCreateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	node := input.toEntity(0)
	node.IsActive = pointer.Fallback(input.IsActive, true)

	if err := handler.service.CreateCategory(request.Context(), actor, node, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, node)
}

/*
PATCH /api/v1/admin/catalog/categories/{id}.

Description: Applies partial updates to a node. Re-parenting is guarded
against self-reference and subtree cycles; a parent_id of 0 moves the node
back to the root group. The visibility flag is not part of the update
payload; it is managed through the toggle endpoint.

Request:
  - id: int64
  - body: categoryRequest (Partial JSON)

Response:
  - 200: Category: Updated node
  - 400: 400: Validation: Hierarchy guard rejection
  - 404: 404: ErrNotFound: Category not found
*/
func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	categoryID, err := parseCategoryID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	node := input.toEntity(categoryID)
	if err := handler.service.UpdateCategory(request.Context(), actor, node, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Return the stored state, including untouched fields.
	updated, err := handler.service.GetCategory(request.Context(), strconv.FormatInt(categoryID, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/admin/catalog/categories/{id}.

Description: Soft-deletes a node. Blocked while subcategories or associated
books still reference it. Requires the delete capability.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Insufficient permissions
  - 422: 422: BusinessRule: Node still has subcategories or books
*/
func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	categoryID, err := parseCategoryID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCategory(request.Context(), actor, categoryID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/admin/catalog/categories/{id}/toggle-active.

Description: Flips the node's public visibility and returns the new state.

Response:
  - 200: {"is_active": bool}
*/
func (handler *Handler) toggleActive(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	categoryID, err := parseCategoryID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.service.ToggleActive(request.Context(), actor, categoryID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_active": state})
}

/*
PUT /api/v1/admin/catalog/categories/{id}/image.

Description: Replaces the node's shelf image via multipart upload. The new
file is written before the database update; the previous image is removed
only after the update commits.

Request (multipart/form-data):
  - image: file (jpg, jpeg, png, webp; max 2 MB)

Response:
  - 200: Category: Updated node
*/
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	categoryID, err := parseCategoryID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Bound the in-memory form parse to the allowed asset size.
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxCoverImageBytes)
	if err := request.ParseMultipartForm(constants.MaxCoverImageBytes); err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldImage, "File missing or exceeds the size limit"))
		return
	}

	file, header, err := request.FormFile("image")
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldImage, "File is required"))
		return
	}
	defer file.Close()

	extension := strings.ToLower(filepath.Ext(header.Filename))
	switch extension {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		respond.Error(writer, request, validate.RequiredError(FieldImage, "Unsupported file type"))
		return
	}

	upload := &Upload{Content: file, Extension: extension}
	if err := handler.service.UpdateCategory(request.Context(), actor, &Category{ID: categoryID}, upload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.GetCategory(request.Context(), strconv.FormatInt(categoryID, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// # Helpers

/*
filterFromQuery maps the staff listing query parameters onto a [Filter].

Parameters:
  - request: *http.Request

Returns:
  - Filter: Populated filter criteria
*/
func filterFromQuery(request *http.Request) Filter {
	queryParams := request.URL.Query()

	filter := Filter{
		Query:    queryParams.Get("q"),
		OnlyRoot: convert.ToBool(queryParams.Get("root")),
	}

	// Hierarchy level scoping
	switch queryParams.Get("type") {
	case "parent", "root":
		filter.OnlyRoot = true
	case "child":
		filter.OnlyChild = true
	}

	if parentID, err := strconv.ParseInt(queryParams.Get("parent"), 10, 64); err == nil {
		filter.ParentID = &parentID
	}

	// Tri-state visibility filter for the staff table.
	switch queryParams.Get("status") {
	case "1":
		filter.IsActive = pointer.To(true)
	case "0":
		filter.IsActive = pointer.To(false)
	}

	return filter
}

// parseCategoryID extracts the numeric node ID from the URL.
func parseCategoryID(request *http.Request) (int64, error) {
	id, err := strconv.ParseInt(requestutil.ID(request, "id"), 10, 64)
	if err != nil {
		return 0, validate.RequiredError(FieldID, "Invalid category id")
	}
	return id, nil
}
