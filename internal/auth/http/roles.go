package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
)

type RolesHandler struct {
	Roles *service.RolesService
}

// ServeHTTP lists every role.
//
//	@Summary		List roles
//	@Description	Every role known to the system, ordered by name. Requires ROLE_ADMIN.
//	@Tags			Roles
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Response[[]authsdk.Role]	"Roles retrieved successfully"
//	@Failure		401	{object}	httpx.ErrorResponse					"Invalid or missing access token"
//	@Failure		403	{object}	httpx.ErrorResponse					"Access denied"
//	@Router			/roles [get].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Roles.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Roles retrieved successfully", roles)
}
