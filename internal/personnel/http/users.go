package http

import (
	"net/http"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
)

// UsersHandler is the admin user management surface.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleList handles GET /v1/admin/users
//
//	@Summary		List users
//	@Description	Pages through every account, newest first, 20 per page.
//	@Tags			Admin
//	@Produce		json
//	@Param			page	query		int		false	"Page number"
//	@Param			role	query		string	false	"admin, employee or applicant"
//	@Success		200		{object}	pnpsdk.Page[pnpsdk.UserResponse]
//	@Failure		400		{object}	pnpsdk.ErrorResponse
//	@Failure		401		{object}	pnpsdk.ErrorResponse
//	@Failure		403		{object}	pnpsdk.ErrorResponse
//	@Router			/v1/admin/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.UserService.List(r.Context(), domain.Role(r.URL.Query().Get("role")), pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	items := make([]pnpsdk.UserResponse, len(page.Items))
	for i, u := range page.Items {
		items[i] = userResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, pnpsdk.Page[pnpsdk.UserResponse]{
		Items:      items,
		Page:       page.Page,
		PerPage:    page.PerPage,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

// HandleCreate handles POST /v1/admin/users
//
//	@Summary	Create user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		pnpsdk.CreateUserRequest	true	"New account"
//	@Success	201		{object}	pnpsdk.UserResponse
//	@Failure	400		{object}	pnpsdk.ErrorResponse
//	@Failure	409		{object}	pnpsdk.ErrorResponse	"already_exists"
//	@Router		/v1/admin/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	twoFactor := true
	if req.TwoFactorEnabled != nil {
		twoFactor = *req.TwoFactorEnabled
	}

	u, err := h.UserService.Create(r.Context(), service.NewUser{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		Role:             domain.Role(req.Role),
		Status:           domain.Status(req.Status),
		TwoFactorEnabled: twoFactor,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userResponse(u))
}

// HandleUpdate handles PATCH /v1/admin/users/{id}
//
//	@Summary	Update user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"User ID"
//	@Param		request	body		pnpsdk.UpdateUserRequest	true	"Fields to change"
//	@Success	200		{object}	pnpsdk.UserResponse
//	@Failure	404		{object}	pnpsdk.ErrorResponse
//	@Router		/v1/admin/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req pnpsdk.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	var patch service.UserPatch
	if req.Status != nil {
		s := domain.Status(*req.Status)
		patch.Status = &s
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}
	patch.TwoFactorEnabled = req.TwoFactorEnabled

	u, err := h.UserService.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

// HandleDelete handles DELETE /v1/admin/users/{id}
//
//	@Summary		Delete user
//	@Description	Removes the account along with its profiles, codes, leave, deployments and notifications.
//	@Tags			Admin
//	@Param			id	path	int	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		400	{object}	pnpsdk.ErrorResponse	"cannot delete yourself"
//	@Failure		404	{object}	pnpsdk.ErrorResponse
//	@Router			/v1/admin/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.UserService.Delete(r.Context(), identity(r).UserID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
