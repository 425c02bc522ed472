// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contributor

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/pkg/slug"
)

// # Service Layer

// Service orchestrates the business logic for contributor management.
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
ListContributors retrieves a paginated and filtered contributor listing.

Parameters:
  - context: context.Context
  - filter: Filter (Name search)
  - limit: int
  - offset: int

Returns:
  - []*Contributor: Slice of matching people with credit counts
  - int: Total count of records matching the filter
  - error: System or repository level errors
*/
func (service *Service) ListContributors(context context.Context, filter Filter, limit, offset int) ([]*Contributor, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

/*
GetContributor fetches a single person by numeric ID or SEO slug.

Parameters:
  - context: context.Context
  - identifier: string (Numeric ID or Slug)

Returns:
  - *Contributor: The hydrated entity
  - error: NOT_FOUND if no match is found
*/
func (service *Service) GetContributor(context context.Context, identifier string) (*Contributor, error) {

	// Identity format detection
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return service.repository.FindByID(context, id)
	}

	// Slug resolution
	return service.repository.FindBySlug(context, identifier)
}

// # Record Management

/*
CreateContributor registers a new person for crediting on records.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - person: *Contributor

Returns:
  - error: FORBIDDEN, validation, or persistence errors
*/
func (service *Service) CreateContributor(ctx context.Context, actor *sec.AuthClaims, person *Contributor) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldName, person.Name).MaxLen(FieldName, person.Name, 200)
	validator.MaxLen(FieldBio, person.Bio, 5000)
	if err := validator.Err(); err != nil {
		return err
	}

	// SEO slug generation with collision retry
	generatedSlug, err := slug.Unique(ctx, slug.From(person.Name), func(slugCtx context.Context, candidate string) (bool, error) {
		return service.repository.SlugExists(slugCtx, candidate, person.ID)
	})
	if err != nil {
		return err
	}
	person.Slug = generatedSlug

	if err := service.repository.Create(ctx, person); err != nil {
		return err
	}

	service.logger.Info("contributor_created",
		slog.Int64("contributor_id", person.ID),
		slog.String("name", person.Name),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
UpdateContributor applies modifications to an existing person.

Description: The slug is regenerated ONLY when the name actually changed.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - person: *Contributor (Target ID and updated attributes)

Returns:
  - error: FORBIDDEN, NOT_FOUND, validation, or persistence errors
*/
func (service *Service) UpdateContributor(ctx context.Context, actor *sec.AuthClaims, person *Contributor) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Load the stored record for slug retention
	existing, err := service.repository.FindByID(ctx, person.ID)
	if err != nil {
		return err
	}

	// Integrity validation for updated fields
	validator := &validate.Validator{}
	if person.Name != "" {
		validator.MaxLen(FieldName, person.Name, 200)
	}
	validator.MaxLen(FieldBio, person.Bio, 5000)
	if err := validator.Err(); err != nil {
		return err
	}

	// Slug retention: regenerate only when the name changed
	person.Slug = ""
	if person.Name != "" && person.Name != existing.Name {
		regenerated, err := slug.Unique(ctx, slug.From(person.Name), func(slugCtx context.Context, candidate string) (bool, error) {
			return service.repository.SlugExists(slugCtx, candidate, person.ID)
		})
		if err != nil {
			return err
		}
		person.Slug = regenerated
	}

	if err := service.repository.Update(ctx, person); err != nil {
		return err
	}

	service.logger.Info("contributor_updated",
		slog.Int64("contributor_id", person.ID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
DeleteContributor removes a person from the registry.

Description: Deletion is blocked while live catalogue records still credit
the person; the credits must be removed from the records first. Admin-only.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the delete capability)
  - id: int64

Returns:
  - error: FORBIDDEN, BUSINESS_RULE when credits remain, or persistence errors
*/
func (service *Service) DeleteContributor(context context.Context, actor *sec.AuthClaims, id int64) error {

	// Deletion requires the stronger capability
	if actor == nil || !actor.Role.CanDeleteRecords() {
		return apperr.Forbidden("Insufficient permissions")
	}

	// Reference guard: live credits block deletion
	credits, err := service.repository.CountCredits(context, id)
	if err != nil {
		return err
	}
	if credits > 0 {
		return apperr.BusinessRule("Cannot delete a contributor who is still credited on books")
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("contributor_deleted",
		slog.Int64("contributor_id", id),
		slog.String("actor_id", actor.UserID),
	)

	return nil
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
