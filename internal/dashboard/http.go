// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/biblio/internal/platform/middleware"
	requestutil "github.com/taibuivan/biblio/internal/platform/request"
	"github.com/taibuivan/biblio/internal/platform/respond"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for the staff dashboard.
type Handler struct {
	service *Service
}

// NewHandler constructs a new dashboard [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AdminRoutes returns a [chi.Router] with the dashboard endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanViewDashboard))

	router.Get("/stats", handler.getStats)

	return router
}

// # Endpoints

/*
GET /api/v1/admin/dashboard/stats.

Description: Returns the catalogue and membership counters, cached for up to
a minute.

Response:
  - 200: Stats: The counters with their collection timestamp
*/
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	stats, err := handler.service.GetStats(request.Context(), actor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}
