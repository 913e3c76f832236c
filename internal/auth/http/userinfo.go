package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
)

type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP returns the authenticated user's profile.
//
//	@Summary		Get user information
//	@Description	Returns the sanitized profile of the authenticated user, including live roles.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Response[authsdk.UserInfo]	"User info retrieved successfully"
//	@Failure		401	{object}	httpx.ErrorResponse					"Invalid or missing access token"
//	@Failure		404	{object}	httpx.ErrorResponse					"User not found"
//	@Router			/auth/userinfo [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := httpx.PrincipalFromContext(r.Context())

	info, err := h.UserService.GetUserInfo(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteSuccess(w, http.StatusOK, "User info retrieved successfully", info)
}
