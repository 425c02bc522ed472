// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/dberr"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/storage"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/pkg/slug"
)

// # Service Layer

// Upload carries a pending shelf image into the service layer.
type Upload struct {
	Content   io.Reader
	Extension string
}

// Service orchestrates the business logic for the classification tree.
//
// Every mutating method takes the acting staff member explicitly as its
// first domain parameter.
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

// # Tree Lookups

/*
ListCategories retrieves a paginated and filtered flat category listing.

Parameters:
  - context: context.Context
  - filter: Filter (Search term, parent scoping, visibility)
  - limit: int
  - offset: int

Returns:
  - []*Category: Flat slice of nodes with book counts
  - int: Total count of records matching the filter
  - error: System or repository level errors
*/
func (service *Service) ListCategories(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {
	return service.repository.List(context, filter, limit, offset)
}

/*
GetTree assembles the full classification hierarchy.

Description: Loads the flat node list in a single query and links children
onto parents in one pass. Nodes whose parent is hidden or deleted surface as
roots rather than disappearing from the tree.

Parameters:
  - context: context.Context
  - onlyActive: bool (Public surface scoping)

Returns:
  - []*Category: Root nodes with nested Children
  - error: System or repository level errors
*/
func (service *Service) GetTree(context context.Context, onlyActive bool) ([]*Category, error) {
	nodes, err := service.repository.ListAll(context, onlyActive)
	if err != nil {
		return nil, err
	}

	// Single-pass assembly: the flat list arrives parents-first.
	index := make(map[int64]*Category, len(nodes))
	for _, node := range nodes {
		index[node.ID] = node
	}

	var roots []*Category
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := index[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

/*
GetCategory fetches a single node by numeric ID or SEO slug.

Parameters:
  - context: context.Context
  - identifier: string (Numeric ID or Slug)

Returns:
  - *Category: The hydrated node including its book count
  - error: NOT_FOUND if no match is found
*/
func (service *Service) GetCategory(context context.Context, identifier string) (*Category, error) {

	// Identity format detection
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return service.repository.FindByID(context, id)
	}

	// Slug resolution
	return service.repository.FindBySlug(context, identifier)
}

// # Tree Management

/*
CreateCategory adds a new node to the classification tree.

Description: The operation validates the parent reference, derives a unique
slug from the name, and positions the node at the end of its sibling group
when no explicit sort order is given. An optional shelf image is written to
disk before the database insert and removed again if the insert fails.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - category: *Category (The node to be persisted)
  - image: *Upload (Optional shelf image)

Returns:
  - error: FORBIDDEN, validation, or persistence errors
*/
func (service *Service) CreateCategory(ctx context.Context, actor *sec.AuthClaims, category *Category, image *Upload) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Attribute and parent reference validation
	if err := service.validateCreate(ctx, category); err != nil {
		return err
	}

	// SEO slug generation with collision retry
	generatedSlug, err := slug.Unique(ctx, slug.From(category.Name), func(slugCtx context.Context, candidate string) (bool, error) {
		return service.repository.SlugExists(slugCtx, candidate, category.ID)
	})
	if err != nil {
		return err
	}
	category.Slug = generatedSlug

	// New nodes shelve at the end of their sibling group.
	if category.SortOrder == 0 {
		next, err := service.repository.NextSortOrder(ctx, category.ParentID)
		if err != nil {
			return err
		}
		category.SortOrder = next
	}

	// Image persistence (before the database write)
	savedPath, err := service.storeImage(category, image)
	if err != nil {
		return err
	}

	// Persistence via Repository, compensating the disk on failure
	if err := service.repository.Create(ctx, category); err != nil {
		service.compensateImage(savedPath)
		return err
	}

	service.logger.Info("category_created",
		slog.Int64("category_id", category.ID),
		slog.String("name", category.Name),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
UpdateCategory applies modifications to an existing tree node.

Description: Supports partial updates. Re-parenting is guarded twice: a node
can never become its own parent, and it can never be moved under one of its
own descendants. The slug is regenerated ONLY when the name actually changed.
A replacement image follows the write-then-persist order of creation, and the
image it replaces is deleted only after the update has committed.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - category: *Category (Target ID and updated attributes)
  - image: *Upload (Optional replacement shelf image)

Returns:
  - error: FORBIDDEN, NOT_FOUND, validation, or persistence errors
*/
func (service *Service) UpdateCategory(ctx context.Context, actor *sec.AuthClaims, category *Category, image *Upload) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Load the stored node for slug retention and image replacement
	existing, err := service.repository.FindByID(ctx, category.ID)
	if err != nil {
		return err
	}

	// Integrity validation, including the hierarchy guards
	if err := service.validateUpdate(ctx, category); err != nil {
		return err
	}

	// Slug retention: regenerate only when the name changed
	category.Slug = ""
	if category.Name != "" && category.Name != existing.Name {
		regenerated, err := slug.Unique(ctx, slug.From(category.Name), func(slugCtx context.Context, candidate string) (bool, error) {
			return service.repository.SlugExists(slugCtx, candidate, category.ID)
		})
		if err != nil {
			return err
		}
		category.Slug = regenerated
	}

	// Replacement image persistence
	savedPath, err := service.storeImage(category, image)
	if err != nil {
		return err
	}

	// Database write, compensating the disk on failure
	if err := service.repository.Update(ctx, category); err != nil {
		service.compensateImage(savedPath)
		return err
	}

	// The old image is removed only after the update has committed.
	if image != nil && existing.ImagePath != "" {
		if err := service.disk.Remove(existing.ImagePath); err != nil {
			service.logger.Warn("category_stale_image_cleanup_failed",
				slog.Int64("category_id", category.ID), slog.Any("error", err))
		}
	}

	service.logger.Info("category_updated",
		slog.Int64("category_id", category.ID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
DeleteCategory removes a node from the classification tree.

Description: Deletion is blocked while the node still anchors live
subcategories or associated books; the caller must re-parent or unlink them
first. The node itself is soft-deleted for auditing. Admin-only.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the delete capability)
  - id: int64

Returns:
  - error: FORBIDDEN, BUSINESS_RULE when the node is still referenced,
    or persistence errors
*/
func (service *Service) DeleteCategory(context context.Context, actor *sec.AuthClaims, id int64) error {

	// Deletion requires the stronger capability
	if actor == nil || !actor.Role.CanDeleteRecords() {
		return apperr.Forbidden("Insufficient permissions")
	}

	// Hierarchy guard: children block deletion
	children, err := service.repository.CountChildren(context, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperr.BusinessRule("Cannot delete a category that still has subcategories")
	}

	// Reference guard: associated books block deletion
	books, err := service.repository.CountBooks(context, id)
	if err != nil {
		return err
	}
	if books > 0 {
		return apperr.BusinessRule("Cannot delete a category that still has books")
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("category_deleted",
		slog.Int64("category_id", id),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
ToggleActive flips a node's public visibility and returns the new state.

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

	service.logger.Info("category_active_toggled",
		slog.Int64("category_id", id),
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

// validateCreate enforces the full attribute contract for new nodes.
func (service *Service) validateCreate(context context.Context, category *Category) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, category.Name).MaxLen(FieldName, category.Name, 200)
	validator.MaxLen(FieldDescription, category.Description, 2000)
	validator.MaxLen(FieldMetaTitle, category.MetaTitle, 200)
	validator.MaxLen(FieldMetaDescription, category.MetaDescription, 500)

	if err := validator.Err(); err != nil {
		return err
	}

	return service.validateParent(context, category)
}

// validateUpdate enforces constraints only on the fields being changed,
// plus the full set of hierarchy guards.
func (service *Service) validateUpdate(context context.Context, category *Category) error {
	validator := &validate.Validator{}

	if category.Name != "" {
		validator.MaxLen(FieldName, category.Name, 200)
	}
	validator.MaxLen(FieldDescription, category.Description, 2000)
	validator.MaxLen(FieldMetaTitle, category.MetaTitle, 200)
	validator.MaxLen(FieldMetaDescription, category.MetaDescription, 500)

	if err := validator.Err(); err != nil {
		return err
	}

	return service.validateParent(context, category)
}

// validateParent checks the parent reference: it must exist, must not be
// the node itself, and must not sit inside the node's own subtree.
func (service *Service) validateParent(context context.Context, category *Category) error {
	if category.ParentID == nil || *category.ParentID == 0 {
		return nil
	}

	// Self-parent guard
	if category.ID != 0 && *category.ParentID == category.ID {
		return validate.RequiredError(FieldParentID, "A category cannot be its own parent")
	}

	// Existence guard
	if _, err := service.repository.FindByID(context, *category.ParentID); err != nil {
		if dberr.IsNotFound(err) {
			return validate.RequiredError(FieldParentID, "Parent category does not exist")
		}
		return err
	}

	// Cycle guard: the new parent must not be a descendant of this node.
	if category.ID != 0 {
		inSubtree, err := service.repository.IsDescendant(context, category.ID, *category.ParentID)
		if err != nil {
			return err
		}
		if inSubtree {
			return validate.RequiredError(FieldParentID, "A category cannot be moved under its own descendant")
		}
	}

	return nil
}

// storeImage writes a pending shelf image onto the disk and stamps its path
// into the entity. It returns the path written so a failed database write
// can be compensated.
func (service *Service) storeImage(category *Category, image *Upload) (string, error) {
	if image == nil {
		return "", nil
	}

	path, err := service.disk.Save(constants.UploadDirCategories, image.Extension, image.Content)
	if err != nil {
		return "", apperr.Internal(err)
	}
	category.ImagePath = path
	return path, nil
}

// compensateImage removes an image written during a workflow whose database
// step failed. Cleanup failures are logged, never surfaced.
func (service *Service) compensateImage(path string) {
	if path == "" {
		return
	}
	if err := service.disk.Remove(path); err != nil {
		service.logger.Warn("image_compensation_failed",
			slog.String("path", path), slog.Any("error", err))
	}
}
