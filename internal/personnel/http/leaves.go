package http

import (
	"net/http"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
)

// LeavesHandler serves an employee's own leave requests and the admin review
// queue.
type LeavesHandler struct {
	LeaveService *service.LeaveService
}

func leaveRequest(req pnpsdk.LeaveRequest) service.LeaveRequest {
	return service.LeaveRequest{
		LeaveType: domain.LeaveType(req.LeaveType),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		DaysCount: req.DaysCount,
		Reason:    req.Reason,
	}
}

// HandleListOwn handles GET /v1/employee/leaves
//
//	@Summary	My leave applications
//	@Tags		Employee
//	@Produce	json
//	@Param		page	query		int	false	"Page number"
//	@Success	200		{object}	domain.Page[domain.LeaveApplication]
//	@Router		/v1/employee/leaves [get].
func (h *LeavesHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	page, err := h.LeaveService.ListOwn(r.Context(), identity(r).UserID, pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// HandleApply handles POST /v1/employee/leaves
//
//	@Summary	Apply for leave
//	@Tags		Employee
//	@Accept		json
//	@Produce	json
//	@Param		request	body		pnpsdk.LeaveRequest	true	"Leave application"
//	@Success	201		{object}	domain.LeaveApplication
//	@Failure	400		{object}	pnpsdk.ErrorResponse
//	@Router		/v1/employee/leaves [post].
func (h *LeavesHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.LeaveRequest
	if !decode(w, r, &req) {
		return
	}

	l, err := h.LeaveService.Apply(r.Context(), identity(r).UserID, leaveRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

// HandleGet handles GET /v1/employee/leaves/{id}
//
//	@Summary	Get one of my leave applications
//	@Tags		Employee
//	@Produce	json
//	@Param		id	path		int	true	"Leave ID"
//	@Success	200	{object}	domain.LeaveApplication
//	@Failure	404	{object}	pnpsdk.ErrorResponse
//	@Router		/v1/employee/leaves/{id} [get].
func (h *LeavesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	l, err := h.LeaveService.Get(r.Context(), identity(r).UserID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleUpdate handles PUT /v1/employee/leaves/{id}
//
//	@Summary	Edit a pending leave application
//	@Tags		Employee
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Leave ID"
//	@Param		request	body		pnpsdk.LeaveRequest	true	"Leave application"
//	@Success	200		{object}	domain.LeaveApplication
//	@Failure	404		{object}	pnpsdk.ErrorResponse
//	@Failure	409		{object}	pnpsdk.ErrorResponse	"leave_not_pending"
//	@Router		/v1/employee/leaves/{id} [put].
func (h *LeavesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req pnpsdk.LeaveRequest
	if !decode(w, r, &req) {
		return
	}

	l, err := h.LeaveService.Update(r.Context(), identity(r).UserID, id, leaveRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleDelete handles DELETE /v1/employee/leaves/{id}
//
//	@Summary	Withdraw a pending leave application
//	@Tags		Employee
//	@Param		id	path	int	true	"Leave ID"
//	@Success	204	"Withdrawn"
//	@Failure	404	{object}	pnpsdk.ErrorResponse
//	@Failure	409	{object}	pnpsdk.ErrorResponse	"leave_not_pending"
//	@Router		/v1/employee/leaves/{id} [delete].
func (h *LeavesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.LeaveService.Delete(r.Context(), identity(r).UserID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListAll handles GET /v1/admin/leaves
//
//	@Summary	All leave applications
//	@Tags		Admin
//	@Produce	json
//	@Param		page	query		int		false	"Page number"
//	@Param		status	query		string	false	"Pending, Approved or Rejected"
//	@Success	200		{object}	domain.Page[domain.LeaveApplication]
//	@Router		/v1/admin/leaves [get].
func (h *LeavesHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	status := domain.LeaveStatus(r.URL.Query().Get("status"))
	page, err := h.LeaveService.ListAll(r.Context(), status, pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// HandleReview handles POST /v1/admin/leaves/{id}/review
//
//	@Summary		Review a leave application
//	@Description	Moves a pending application to Approved or Rejected and notifies the employee.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Leave ID"
//	@Param			request	body		pnpsdk.LeaveReviewRequest	true	"Decision"
//	@Success		200		{object}	domain.LeaveApplication
//	@Failure		404		{object}	pnpsdk.ErrorResponse
//	@Failure		409		{object}	pnpsdk.ErrorResponse	"leave_not_pending"
//	@Router			/v1/admin/leaves/{id}/review [post].
func (h *LeavesHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req pnpsdk.LeaveReviewRequest
	if !decode(w, r, &req) {
		return
	}

	l, err := h.LeaveService.Review(r.Context(), id, domain.LeaveStatus(req.Status), req.Remarks)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}
