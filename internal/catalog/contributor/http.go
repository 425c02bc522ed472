// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contributor

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

// Handler implements the HTTP layer for contributor management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new contributor [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PublicRoutes returns a [chi.Router] with the visitor-facing endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{identifier}", handler.get)

	return router
}

// AdminRoutes returns a [chi.Router] with the staff management endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanManageCatalog))

	router.Get("/", handler.list)
	router.Post("/", handler.createContributor)
	router.Get("/{identifier}", handler.get)
	router.Patch("/{id}", handler.updateContributor)
	router.Delete("/{id}", handler.deleteContributor)

	return router
}

// # Endpoints

/*
GET /api/v1/catalog/contributors.

Description: Retrieves a paginated contributor listing with credit counts.

Request:
  - q: string (Name search)
  - limit: int
  - page: int

Response:
  - 200: []Contributor: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{Query: request.URL.Query().Get("q")}

	contributors, total, err := handler.service.ListContributors(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, contributors, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/catalog/contributors/{identifier}.

Description: Retrieves a contributor by numeric ID or unique slug.

Response:
  - 200: Contributor: Success
  - 404: 404: ErrNotFound: Contributor not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	person, err := handler.service.GetContributor(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, person)
}

// # Request Payloads

// contributorRequest defines the inbound JSON schema for creation and updates.
type contributorRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

/*
POST /api/v1/admin/catalog/contributors.

Description: Registers a new person. Slugs are generated from the name with
automatic collision suffixes.

Response:
  - 201: Contributor: Created record
*/
func (handler *Handler) createContributor(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input contributorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	person := &Contributor{Name: input.Name, Bio: input.Bio}
	if err := handler.service.CreateContributor(request.Context(), actor, person); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, person)
}

/*
PATCH /api/v1/admin/catalog/contributors/{id}.

Description: Applies partial updates to a contributor.

Response:
  - 200: Contributor: Updated record
  - 404: 404: ErrNotFound: Contributor not found
*/
func (handler *Handler) updateContributor(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	contributorID, err := parseContributorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input contributorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	person := &Contributor{ID: contributorID, Name: input.Name, Bio: input.Bio}
	if err := handler.service.UpdateContributor(request.Context(), actor, person); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Return the stored state, including untouched fields.
	updated, err := handler.service.GetContributor(request.Context(), strconv.FormatInt(contributorID, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/admin/catalog/contributors/{id}.

Description: Soft-deletes a contributor. Blocked while live records still
credit the person. Requires the delete capability.

Response:
  - 204: No Content: Success
  - 422: 422: BusinessRule: Person is still credited on books
*/
func (handler *Handler) deleteContributor(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	contributorID, err := parseContributorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteContributor(request.Context(), actor, contributorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Helpers

// parseContributorID extracts the numeric record ID from the URL.
func parseContributorID(request *http.Request) (int64, error) {
	id, err := strconv.ParseInt(requestutil.ID(request, "id"), 10, 64)
	if err != nil {
		return 0, validate.RequiredError(FieldID, "Invalid contributor id")
	}
	return id, nil
}
