// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package language

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/validate"
)

// codeRegex matches an ISO-639-1 style code with an optional region
// subtag ("en", "vi", "pt-br").
var codeRegex = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// # Service Layer

// Service orchestrates the business logic for the language reference list.
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
ListLanguages retrieves the reference list.

Parameters:
  - context: context.Context
  - onlyActive: bool (Public surface scoping)

Returns:
  - []*Language: Reference entries with book counts
  - error: System or repository level errors
*/
func (service *Service) ListLanguages(context context.Context, onlyActive bool) ([]*Language, error) {
	return service.repository.List(context, onlyActive)
}

/*
GetLanguage fetches a single entry by its ISO-639-1 code.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - *Language: The reference entry
  - error: NOT_FOUND if no match is found
*/
func (service *Service) GetLanguage(context context.Context, code string) (*Language, error) {
	return service.repository.FindByCode(context, strings.ToLower(code))
}

// # Reference Management

/*
CreateLanguage registers a new language in the reference list.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - entry: *Language

Returns:
  - error: FORBIDDEN, validation, CONFLICT, or persistence errors
*/
func (service *Service) CreateLanguage(context context.Context, actor *sec.AuthClaims, entry *Language) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	// Codes are stored normalised to lowercase.
	entry.Code = strings.ToLower(strings.TrimSpace(entry.Code))

	// Attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldCode, entry.Code)
	validator.Custom(FieldCode, entry.Code != "" && !codeRegex.MatchString(entry.Code),
		"Must be an ISO-639-1 code, optionally with a region subtag")
	validator.Required(FieldName, entry.Name).MaxLen(FieldName, entry.Name, 100)
	validator.MaxLen(FieldNativeName, entry.NativeName, 100)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repository.Create(context, entry); err != nil {
		return err
	}

	service.logger.Info("language_created",
		slog.String("code", entry.Code),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
UpdateLanguage applies modifications to an entry's display names.

Description: The code itself is immutable; books reference it directly.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The staff member performing the operation)
  - entry: *Language (Target code and updated attributes)

Returns:
  - error: FORBIDDEN, NOT_FOUND, validation, or persistence errors
*/
func (service *Service) UpdateLanguage(context context.Context, actor *sec.AuthClaims, entry *Language) error {

	// Authorization gate
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	entry.Code = strings.ToLower(entry.Code)

	// Integrity validation for updated fields
	validator := &validate.Validator{}
	if entry.Name != "" {
		validator.MaxLen(FieldName, entry.Name, 100)
	}
	validator.MaxLen(FieldNativeName, entry.NativeName, 100)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repository.Update(context, entry); err != nil {
		return err
	}

	service.logger.Info("language_updated",
		slog.String("code", entry.Code),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
DeleteLanguage removes an entry from the reference list.

Description: Deletion is blocked while live catalogue records are still
published in the language. Admin-only. Removal is physical; the reference
list carries no soft-delete column.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the delete capability)
  - code: string

Returns:
  - error: FORBIDDEN, BUSINESS_RULE when references remain, or persistence errors
*/
func (service *Service) DeleteLanguage(context context.Context, actor *sec.AuthClaims, code string) error {

	// Deletion requires the stronger capability
	if actor == nil || !actor.Role.CanDeleteRecords() {
		return apperr.Forbidden("Insufficient permissions")
	}

	code = strings.ToLower(code)

	// Reference guard: live books block deletion
	books, err := service.repository.CountBooks(context, code)
	if err != nil {
		return err
	}
	if books > 0 {
		return apperr.BusinessRule("Cannot delete a language that books are still published in")
	}

	if err := service.repository.Delete(context, code); err != nil {
		return err
	}

	service.logger.Warn("language_deleted",
		slog.String("code", code),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

/*
ToggleActive flips an entry's public visibility and returns the new state.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - code: string

Returns:
  - bool: The visibility state after the flip
  - error: FORBIDDEN or persistence errors
*/
func (service *Service) ToggleActive(context context.Context, actor *sec.AuthClaims, code string) (bool, error) {
	if err := requireCatalogManager(actor); err != nil {
		return false, err
	}

	state, err := service.repository.ToggleActive(context, strings.ToLower(code))
	if err != nil {
		return false, err
	}

	service.logger.Info("language_active_toggled",
		slog.String("code", code),
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
