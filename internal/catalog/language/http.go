// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package language

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/biblio/internal/platform/middleware"
	requestutil "github.com/taibuivan/biblio/internal/platform/request"
	"github.com/taibuivan/biblio/internal/platform/respond"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for the language reference list.
type Handler struct {
	service *Service
}

// NewHandler constructs a new language [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PublicRoutes returns a [chi.Router] with the visitor-facing endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listPublic)

	return router
}

// AdminRoutes returns a [chi.Router] with the staff management endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanManageCatalog))

	router.Get("/", handler.listAdmin)
	router.Post("/", handler.createLanguage)
	router.Get("/{code}", handler.get)
	router.Patch("/{code}", handler.updateLanguage)
	router.Delete("/{code}", handler.deleteLanguage)

	// Visibility toggle
	router.Patch("/{code}/toggle-active", handler.toggleActive)

	return router
}

// # Endpoints

/*
GET /api/v1/catalog/languages.

Description: Returns the ACTIVE language reference list. The list is small
and rendered whole in filter dropdowns, so no pagination applies.

Response:
  - 200: []Language: Reference entries with book counts
*/
func (handler *Handler) listPublic(writer http.ResponseWriter, request *http.Request) {
	languages, err := handler.service.ListLanguages(request.Context(), true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, languages)
}

/*
GET /api/v1/admin/catalog/languages.

Description: Returns the full reference list including hidden entries.

Response:
  - 200: []Language: Reference entries
*/
func (handler *Handler) listAdmin(writer http.ResponseWriter, request *http.Request) {
	languages, err := handler.service.ListLanguages(request.Context(), false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, languages)
}

/*
GET /api/v1/admin/catalog/languages/{code}.

Response:
  - 200: Language: Success
  - 404: 404: ErrNotFound: Language not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	code := requestutil.Param(request, "code")

	entry, err := handler.service.GetLanguage(request.Context(), code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

// # Request Payloads

// languageRequest defines the inbound JSON schema for creation and updates.
type languageRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	IsActive   *bool  `json:"is_active"`
}

/*
POST /api/v1/admin/catalog/languages.

Description: Registers a new language. The code is normalised to lowercase
and must follow the ISO-639-1 shape.

Response:
  - 201: Language: Created entry
  - 409: 409: Conflict: Code already registered
*/
func (handler *Handler) createLanguage(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input languageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry := &Language{
		Code:       input.Code,
		Name:       input.Name,
		NativeName: input.NativeName,
		IsActive:   true,
	}
	if input.IsActive != nil {
		entry.IsActive = *input.IsActive
	}

	if err := handler.service.CreateLanguage(request.Context(), actor, entry); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
PATCH /api/v1/admin/catalog/languages/{code}.

Description: Updates an entry's display names. The code itself is immutable.

Response:
  - 200: Language: Updated entry
  - 404: 404: ErrNotFound: Language not found
*/
func (handler *Handler) updateLanguage(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	code := requestutil.Param(request, "code")

	var input languageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry := &Language{Code: code, Name: input.Name, NativeName: input.NativeName}
	if err := handler.service.UpdateLanguage(request.Context(), actor, entry); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.GetLanguage(request.Context(), code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/admin/catalog/languages/{code}.

Description: Removes an entry from the reference list. Blocked while books
are still published in the language. Requires the delete capability.

Response:
  - 204: No Content: Success
  - 422: 422: BusinessRule: Books still reference the language
*/
func (handler *Handler) deleteLanguage(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	code := requestutil.Param(request, "code")

	if err := handler.service.DeleteLanguage(request.Context(), actor, code); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/admin/catalog/languages/{code}/toggle-active.

Description: Flips the entry's public visibility and returns the new state.

Response:
  - 200: {"is_active": bool}
*/
func (handler *Handler) toggleActive(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	code := requestutil.Param(request, "code")

	state, err := handler.service.ToggleActive(request.Context(), actor, code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_active": state})
}
