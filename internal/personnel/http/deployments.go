package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
)

type DeploymentsHandler struct {
	DeploymentService *service.DeploymentService
}

// HandleList handles GET /v1/admin/deployments
//
//	@Summary	List deployments
//	@Tags		Admin
//	@Produce	json
//	@Param		page		query		int	false	"Page number"
//	@Param		employee_id	query		int	false	"Only this employee"
//	@Success	200			{object}	domain.Page[domain.Deployment]
//	@Router		/v1/admin/deployments [get].
func (h *DeploymentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	employeeID, _ := strconv.ParseInt(r.URL.Query().Get("employee_id"), 10, 64)
	page, err := h.DeploymentService.List(r.Context(), employeeID, pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// HandleCreate handles POST /v1/admin/deployments
//
//	@Summary		Deploy an employee
//	@Description	An Active deployment completes the employee's previous Active one.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pnpsdk.DeploymentRequest	true	"Deployment"
//	@Success		201		{object}	domain.Deployment
//	@Failure		400		{object}	pnpsdk.ErrorResponse
//	@Failure		404		{object}	pnpsdk.ErrorResponse	"no such employee"
//	@Router			/v1/admin/deployments [post].
func (h *DeploymentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.DeploymentRequest
	if !decode(w, r, &req) {
		return
	}

	d, err := h.DeploymentService.Create(r.Context(), domain.Deployment{
		EmployeeID: req.EmployeeID,
		Station:    req.Station,
		Unit:       req.Unit,
		Position:   req.Position,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     domain.DeploymentStatus(req.Status),
		Remarks:    req.Remarks,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

// HandleUpdate handles PATCH /v1/admin/deployments/{id}
//
//	@Summary	Update a deployment
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int								true	"Deployment ID"
//	@Param		request	body		pnpsdk.UpdateDeploymentRequest	true	"Fields to change"
//	@Success	200		{object}	domain.Deployment
//	@Failure	404		{object}	pnpsdk.ErrorResponse
//	@Router		/v1/admin/deployments/{id} [patch].
func (h *DeploymentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req pnpsdk.UpdateDeploymentRequest
	if !decode(w, r, &req) {
		return
	}

	patch := service.DeploymentPatch{EndDate: req.EndDate, Remarks: req.Remarks}
	if req.Status != nil {
		s := domain.DeploymentStatus(*req.Status)
		patch.Status = &s
	}

	d, err := h.DeploymentService.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}
