// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publisher

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/biblio/internal/platform/middleware"
	requestutil "github.com/taibuivan/biblio/internal/platform/request"
	"github.com/taibuivan/biblio/internal/platform/respond"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for publisher management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new publisher [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PublicRoutes returns a [chi.Router] with the visitor-facing endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listPublic)
	router.Get("/{identifier}", handler.get)

	return router
}

// AdminRoutes returns a [chi.Router] with the staff management endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanManageCatalog))

	router.Get("/", handler.listAdmin)
	router.Post("/", handler.createPublisher)
	router.Get("/{identifier}", handler.get)
	router.Patch("/{id}", handler.updatePublisher)
	router.Delete("/{id}", handler.deletePublisher)

	// Visibility toggle
	router.Patch("/{id}/toggle-active", handler.toggleActive)

	return router
}

// # Endpoints

/*
GET /api/v1/catalog/publishers.

Description: Retrieves the ACTIVE publisher listing with book counts.

Request:
  - q: string (Name search)
  - limit: int
  - page: int

Response:
  - 200: []Publisher: Paginated list
*/
func (handler *Handler) listPublic(writer http.ResponseWriter, request *http.Request) {
	handler.list(writer, request, true)
}

/*
GET /api/v1/admin/catalog/publishers.

Description: Retrieves the staff publisher listing, including hidden houses.

Response:
  - 200: []Publisher: Paginated list
*/
func (handler *Handler) listAdmin(writer http.ResponseWriter, request *http.Request) {
	handler.list(writer, request, false)
}

// list is the shared listing pipeline behind the public and staff surfaces.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request, onlyActive bool) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:      request.URL.Query().Get("q"),
		OnlyActive: onlyActive,
	}

	publishers, total, err := handler.service.ListPublishers(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, publishers, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/catalog/publishers/{identifier}.

Description: Retrieves a publisher by numeric ID or unique slug.

Response:
  - 200: Publisher: Success
  - 404: 404: ErrNotFound: Publisher not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	house, err := handler.service.GetPublisher(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, house)
}

// # Request Payloads

// publisherRequest defines the inbound JSON schema for creation and updates.
type publisherRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	IsActive    *bool  `json:"is_active"`
}

// toEntity maps the payload onto a domain entity.
func (input *publisherRequest) toEntity(id int64) *Publisher {
	house := &Publisher{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Website:     input.Website,
	}

	if input.IsActive != nil {
		house.IsActive = *input.IsActive
	}

	return house
}

/*
POST /api/v1/admin/catalog/publishers.

Description: Registers a new publishing house. Slugs are generated from the
name with automatic collision suffixes.

Response:
  - 201: Publisher: Created record
*/
func (handler *Handler) createPublisher(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input publisherRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	house := input.toEntity(0)
	if err := handler.service.CreatePublisher(request.Context(), actor, house); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, house)
}

/*
PATCH /api/v1/admin/catalog/publishers/{id}.

Description: Applies partial updates to a publishing house.

Response:
  - 200: Publisher: Updated record
  - 404: 404: ErrNotFound: Publisher not found
*/
func (handler *Handler) updatePublisher(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	publisherID, err := parsePublisherID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input publisherRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	house := input.toEntity(publisherID)
	if err := handler.service.UpdatePublisher(request.Context(), actor, house); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Return the stored state, including untouched fields.
	updated, err := handler.service.GetPublisher(request.Context(), strconv.FormatInt(publisherID, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/admin/catalog/publishers/{id}.

Description: Soft-deletes a publishing house. Blocked while live records
still reference it. Requires the delete capability.

Response:
  - 204: No Content: Success
  - 422: 422: BusinessRule: House is still referenced by books
*/
func (handler *Handler) deletePublisher(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	publisherID, err := parsePublisherID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeletePublisher(request.Context(), actor, publisherID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/admin/catalog/publishers/{id}/toggle-active.

Description: Flips the house's public visibility and returns the new state.

Response:
  - 200: {"is_active": bool}
*/
func (handler *Handler) toggleActive(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	publisherID, err := parsePublisherID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.service.ToggleActive(request.Context(), actor, publisherID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_active": state})
}

// # Helpers

// parsePublisherID extracts the numeric record ID from the URL.
func parsePublisherID(request *http.Request) (int64, error) {
	id, err := strconv.ParseInt(requestutil.ID(request, "id"), 10, 64)
	if err != nil {
		return 0, validate.RequiredError(FieldID, "Invalid publisher id")
	}
	return id, nil
}
