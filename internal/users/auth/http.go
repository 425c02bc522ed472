// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/middleware"
	requestutil "github.com/taibuivan/biblio/internal/platform/request"
	"github.com/taibuivan/biblio/internal/platform/respond"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for accounts and sessions.
type Handler struct {
	service *Service

	// secureCookies is false only in development, where the API runs
	// without TLS.
	secureCookies bool
}

// NewHandler constructs a new auth [Handler] with its service dependency.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

// PublicRoutes returns a [chi.Router] with the authentication endpoints.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/password-reset/request", handler.requestPasswordReset)
	router.Post("/password-reset/confirm", handler.confirmPasswordReset)

	// Signed-in self-service
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)
		authed.Get("/me", handler.me)
		authed.Patch("/me", handler.updateProfile)
		authed.Post("/change-password", handler.changePassword)
	})

	return router
}

// AdminRoutes returns a [chi.Router] with the account administration endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireCapability(sec.Role.CanManageUsers))

	router.Get("/", handler.listUsers)
	router.Get("/{id}", handler.getUser)
	router.Patch("/{id}/role", handler.changeRole)
	router.Patch("/{id}/toggle-active", handler.toggleActive)

	return router
}

// # Request & Response Payloads

// registerRequest defines the inbound JSON schema for signup.
type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// loginRequest defines the inbound JSON schema for credential login.
type loginRequest struct {
	Login    string `json:"login"` // Username or email
	Password string `json:"password"`
}

// authResponse pairs the account with its access token. The refresh token
// never appears here; it travels only in the HttpOnly cookie.
type authResponse struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// # Session Endpoints

/*
POST /api/v1/auth/register.

Description: Creates a member account. The verification email is dispatched
out of band; the token never appears in the response.

Response:
  - 201: User: The created account
  - 409: 409: Conflict: Username or email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user := &User{
		Username:    input.Username,
		Email:       input.Email,
		DisplayName: input.DisplayName,
	}

	// TODO: hand the verification token to the mail dispatcher once
	// outbound email lands.
	if _, err := handler.service.Register(request.Context(), user, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials, sets the refresh token cookie, and returns
the account with its access token.

Response:
  - 200: authResponse: Success
  - 401: 401: Unauthorized: Bad credentials or deactivated account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.service.Login(request.Context(), input.Login, input.Password, deviceFrom(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair.RefreshToken)
	respond.OK(writer, authResponse{User: user, AccessToken: pair.AccessToken, ExpiresAt: pair.ExpiresAt})
}

/*
POST /api/v1/auth/refresh.

Description: Rotates the refresh token from the cookie and returns a fresh
access token. The old refresh token is dead after this call.

Response:
  - 200: authResponse: Success
  - 401: 401: Unauthorized: Missing, revoked, or expired refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	user, pair, err := handler.service.Refresh(request.Context(), refreshTokenFrom(request), deviceFrom(request))
	if err != nil {
		handler.clearRefreshCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, pair.RefreshToken)
	respond.OK(writer, authResponse{User: user, AccessToken: pair.AccessToken, ExpiresAt: pair.ExpiresAt})
}

/*
POST /api/v1/auth/logout.

Description: Revokes the presented refresh session and clears the cookie.
Idempotent; succeeds even without a live session.

Response:
  - 204: No Content: Success
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Logout(request.Context(), refreshTokenFrom(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearRefreshCookie(writer)
	respond.NoContent(writer)
}

// # Recovery Endpoints

/*
POST /api/v1/auth/verify-email.

Response:
  - 204: No Content: Success
  - 400: 400: ValidationError: Invalid or expired token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.VerifyEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/auth/password-reset/request.

Description: Always answers 202 regardless of whether the email is known, so
the endpoint cannot be used to enumerate accounts.

Response:
  - 202: Accepted
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// TODO: hand the reset token to the mail dispatcher once outbound
	// email lands.
	if _, err := handler.service.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.WriteHeader(http.StatusAccepted)
}

/*
POST /api/v1/auth/password-reset/confirm.

Response:
  - 204: No Content: Success
  - 400: 400: ValidationError: Invalid or expired token
*/
func (handler *Handler) confirmPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Self-Service Endpoints

/*
GET /api/v1/auth/me.

Response:
  - 200: User: The signed-in account
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/auth/me.

Description: Updates the display name and/or email. An email change drops
the verified flag and triggers a fresh verification email.

Response:
  - 200: User: The updated account
  - 409: 409: Conflict: Email already registered
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := &User{DisplayName: input.DisplayName, Email: input.Email}
	updated, _, err := handler.service.UpdateProfile(request.Context(), actor, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
POST /api/v1/auth/change-password.

Description: Replaces the credential and signs out every other device.

Response:
  - 204: No Content: Success
  - 401: 401: Unauthorized: Wrong current password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangePassword(request.Context(), actor, input.CurrentPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearRefreshCookie(writer)
	respond.NoContent(writer)
}

// # Administration Endpoints

/*
GET /api/v1/admin/users.

Description: Paginated account listing with username/email search, role, and
visibility filters.

Response:
  - 200: []User with pagination metadata
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	params := pagination.FromRequest(request)

	filter := Filter{
		Query:      request.URL.Query().Get("q"),
		Role:       sec.Role(request.URL.Query().Get("role")),
		OnlyActive: request.URL.Query().Get("active") == "true",
	}

	users, total, err := handler.service.ListUsers(request.Context(), actor, filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/admin/users/{id}.

Response:
  - 200: User: Success
  - 404: 404: ErrNotFound: Account not found
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.GetUser(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/admin/users/{id}/role.

Response:
  - 200: User: The account with its new role
  - 422: 422: BusinessRule: Self-demotion attempt
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	userID := requestutil.ID(request, "id")

	var input struct {
		Role string `json:"role"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangeRole(request.Context(), actor, userID, sec.Role(input.Role)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
PATCH /api/v1/admin/users/{id}/toggle-active.

Description: Flips the account's active flag; deactivation revokes every
live session immediately.

Response:
  - 200: {"is_active": bool}
  - 422: 422: BusinessRule: Self-deactivation attempt
*/
func (handler *Handler) toggleActive(writer http.ResponseWriter, request *http.Request) {
	actor := requestutil.Actor(request)
	userID := requestutil.ID(request, "id")

	state, err := handler.service.ToggleActive(request.Context(), actor, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_active": state})
}

// # Cookie & Device Helpers

// setRefreshCookie stores the plaintext refresh secret in an HttpOnly cookie
// scoped to the auth endpoints.
func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   int(RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh cookie on the client.
func (handler *Handler) clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFrom reads the refresh secret from the request cookie.
func refreshTokenFrom(request *http.Request) string {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// deviceFrom collects the client metadata stamped onto new sessions.
func deviceFrom(request *http.Request) Device {
	return Device{
		Name:      request.Header.Get("X-Device-Name"),
		IPAddress: request.RemoteAddr,
		UserAgent: request.UserAgent(),
	}
}
