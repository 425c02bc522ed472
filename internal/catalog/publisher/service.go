// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publisher

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/pkg/slug"
)

// # Service Layer

// Service orchestrates the business logic for publisher management.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

// # Lookups

/*
ListPublishers retrieves a paginated and filtered publisher listing.

Parameters:
  - context: context.Context
  - filter: Filter (Name search, visibility)
  - limit: int
  - offset: int

Returns:
  - []*Publisher: Slice of matching houses with book counts
  - int: Total count of records matching the filter
  - error: System or repository level errors
*/
func (service *Service) ListPublishers(context context.Context, filter Filter, limit, offset int) ([]*Publisher, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

/*
GetPublisher fetches a single house by numeric ID or SEO slug.

Parameters:
  - context: context.Context
  - identifier: string (Numeric ID or Slug)

Returns:
  - *Publisher: The hydrated entity
  - error: NOT_FOUND if no match is found
*/
func (service *Service) GetPublisher(context context.Context, identifier string) (*Publisher, error) {

	// Identity format detection
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return service.repository.FindByID(context, id)
	}

	// Slug resolution
	return service.repository.FindBySlug(context, identifier)
}

// # Record Management

/*
CreatePublisher registers a new publishing house.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - house: *Publisher

Returns:
  - error: FORBIDDEN, validation, or persistence errors
*/
func (service *Service) CreatePublisher(ctx context.Context, actor *sec.AuthClaims, house *Publisher) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Attribute validation
	if err := validateAttributes(house, true); err != nil {
		return err
	}

	// SEO slug generation with collision retry
	generatedSlug, err := slug.Unique(ctx, slug.From(house.Name), func(slugCtx context.Context, candidate string) (bool, error) {
		return service.repository.SlugExists(slugCtx, candidate, house.ID)
	})
	if err != nil {
		return err
	}
	house.Slug = generatedSlug

	if err := service.repository.Create(ctx, house); err != nil {
		return err
	}

	service.logger.Info("publisher_created",
		slog.Int64("publisher_id", house.ID),
		slog.String("name", house.Name),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
UpdatePublisher applies modifications to an existing house.

Description: The slug is regenerated ONLY when the name actually changed.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - house: *Publisher (Target ID and updated attributes)

Returns:
  - error: FORBIDDEN, NOT_FOUND, validation, or persistence errors
*/
func (service *Service) UpdatePublisher(ctx context.Context, actor *sec.AuthClaims, house *Publisher) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Load the stored record for slug retention
	existing, err := service.repository.FindByID(ctx, house.ID)
	if err != nil {
		return err
	}

	// Integrity validation for updated fields
	if err := validateAttributes(house, false); err != nil {
		return err
	}

	// Slug retention: regenerate only when the name changed
	house.Slug = ""
	if house.Name != "" && house.Name != existing.Name {
		regenerated, err := slug.Unique(ctx, slug.From(house.Name), func(slugCtx context.Context, candidate string) (bool, error) {
			return service.repository.SlugExists(slugCtx, candidate, house.ID)
		})
		if err != nil {
			return err
		}
		house.Slug = regenerated
	}

	if err := service.repository.Update(ctx, house); err != nil {
		return err
	}

	service.logger.Info("publisher_updated",
		slog.Int64("publisher_id", house.ID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
DeletePublisher removes a house from the registry.

Description: Deletion is blocked while live catalogue records still reference
the house. Admin-only.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the delete capability)
  - id: int64

Returns:
  - error: FORBIDDEN, BUSINESS_RULE when references remain, or persistence errors
*/
func (service *Service) DeletePublisher(context context.Context, actor *sec.AuthClaims, id int64) error {

	// Deletion requires the stronger capability
	if actor == nil || !actor.Role.CanDeleteRecords() {
		return apperr.Forbidden("Insufficient permissions")
	}

	// Reference guard: live books block deletion
	books, err := service.repository.CountBooks(context, id)
	if err != nil {
		return err
	}
	if books > 0 {
		return apperr.BusinessRule("Cannot delete a publisher that is still referenced by books")
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("publisher_deleted",
		slog.Int64("publisher_id", id),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
ToggleActive flips a house's public visibility and returns the new state.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - id: int64

Returns:
  - bool: The visibility state after the flip
  - error: FORBIDDEN or persistence errors
*/
func (service *Service) ToggleActive(context context.Context, actor *sec.AuthClaims, id int64) (bool, error) {
	if err := requireCatalogManager(actor); err != nil {
		return false, err
	}

	state, err := service.repository.ToggleActive(context, id)
	if err != nil {
		return false, err
	}

	service.logger.Info("publisher_active_toggled",
		slog.Int64("publisher_id", id),
		slog.Bool("is_active", state),
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

// validateAttributes enforces the attribute contract. On updates, empty
// fields are skipped because they leave stored columns untouched.
func validateAttributes(house *Publisher, creating bool) error {
	validator := &validate.Validator{}

	if creating {
		validator.Required(FieldName, house.Name)
	}
	if house.Name != "" {
		validator.MaxLen(FieldName, house.Name, 200)
	}
	validator.MaxLen(FieldDescription, house.Description, 2000)

	// Website links must be absolute so the frontend can render them directly.
	if house.Website != "" {
		validator.MaxLen(FieldWebsite, house.Website, 500)
		validator.Custom(FieldWebsite,
			!strings.HasPrefix(house.Website, "http://") && !strings.HasPrefix(house.Website, "https://"),
			"Must be an absolute http(s) URL")
	}

	return validator.Err()
}
