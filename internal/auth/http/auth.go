package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/pkg/authsdk"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
)

// AuthHandler serves the public credential endpoints under /auth.
type AuthHandler struct {
	Authenticator *service.Authenticator
	Sessions      *service.SessionService
}

func tokenResponse(pair *domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

// HandleRegister godoc
//
//	@Summary		Register a new user
//	@Description	Creates an active account with the default role. Username and email must be unused.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest							true	"New account"
//	@Success		201		{object}	authsdk.Response[authsdk.UserInfo]				"User registered successfully"
//	@Failure		400		{object}	httpx.ErrorResponse								"Validation failed or passwords do not match"
//	@Failure		409		{object}	httpx.ErrorResponse								"Username or email already in use"
//	@Failure		429		{object}	httpx.ErrorResponse								"Rate limit exceeded"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	info, err := h.Authenticator.Register(r.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "User registered successfully", info)
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Description	Issues an access token and a refresh token. Any earlier refresh token of the user is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest							true	"Credentials"
//	@Success		200		{object}	authsdk.Response[authsdk.TokenResponse]		"Login successful"
//	@Failure		400		{object}	httpx.ErrorResponse							"Validation failed"
//	@Failure		401		{object}	httpx.ErrorResponse							"Invalid email or password"
//	@Failure		403		{object}	httpx.ErrorResponse							"Account is inactive"
//	@Failure		429		{object}	httpx.ErrorResponse							"Rate limit exceeded"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.Authenticator.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "Login successful", tokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Exchange a refresh token for a new access token
//	@Description	Roles are re-read from the account. With rotation enabled the refresh token is replaced.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest						true	"Refresh token"
//	@Success		200		{object}	authsdk.Response[authsdk.TokenResponse]	"Token refreshed successfully"
//	@Failure		400		{object}	httpx.ErrorResponse						"Validation failed"
//	@Failure		401		{object}	httpx.ErrorResponse						"Invalid, expired or revoked refresh token"
//	@Failure		403		{object}	httpx.ErrorResponse						"Account is inactive"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", tokenResponse(pair))
}

// HandleLogout godoc
//
//	@Summary		Revoke a refresh token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	httpx.SuccessResponse	"Logout successful"
//	@Failure		400		{object}	httpx.ErrorResponse		"Validation failed"
//	@Failure		401		{object}	httpx.ErrorResponse		"Unknown refresh token"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Sessions.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Logout successful", nil)
}
