package http

import (
	"net/http"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
)

// ProfilesHandler serves the per-role profile pages, employee records and
// the admin applicant review.
type ProfilesHandler struct {
	ProfileService *service.ProfileService
}

// HandleGetEmployee handles GET /v1/employee/profile
//
//	@Summary	Employee profile
//	@Tags		Employee
//	@Produce	json
//	@Success	200	{object}	domain.EmployeeProfile
//	@Router		/v1/employee/profile [get].
func (h *ProfilesHandler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.EmployeeProfile(r.Context(), identity(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandlePutEmployee handles PUT /v1/employee/profile
//
//	@Summary	Save employee profile
//	@Tags		Employee
//	@Accept		json
//	@Produce	json
//	@Param		request	body		pnpsdk.EmployeeProfileRequest	true	"Profile"
//	@Success	200		{object}	domain.EmployeeProfile
//	@Failure	400		{object}	pnpsdk.ErrorResponse
//	@Router		/v1/employee/profile [put].
func (h *ProfilesHandler) HandlePutEmployee(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.EmployeeProfileRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.ProfileService.SaveEmployeeProfile(r.Context(), domain.EmployeeProfile{
		UserID:                 identity(r).UserID,
		FirstName:              req.FirstName,
		MiddleName:             req.MiddleName,
		LastName:               req.LastName,
		Suffix:                 req.Suffix,
		Rank:                   req.Rank,
		Unit:                   req.Unit,
		Station:                req.Station,
		Address:                req.Address,
		HomeAddress:            req.HomeAddress,
		Gender:                 domain.Gender(req.Gender),
		DateOfBirth:            req.DateOfBirth,
		PlaceOfBirth:           req.PlaceOfBirth,
		Religion:               req.Religion,
		EmergencyContactName:   req.EmergencyContactName,
		EmergencyRelationship:  req.EmergencyRelationship,
		EmergencyContactNumber: req.EmergencyContactNumber,
		ProfilePicture:         req.ProfilePicture,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleRecords handles GET /v1/employee/records
//
//	@Summary		Employee records
//	@Description	Profile, account status, education (newest first) and the current deployment.
//	@Tags			Employee
//	@Produce		json
//	@Success		200	{object}	service.EmployeeRecords
//	@Router			/v1/employee/records [get].
func (h *ProfilesHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	rec, err := h.ProfileService.Records(r.Context(), identity(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rec)
}

// HandleAddEducation handles POST /v1/employee/education
//
//	@Summary	Add education
//	@Tags		Employee
//	@Accept		json
//	@Produce	json
//	@Param		request	body		pnpsdk.EducationRequest	true	"Education entry"
//	@Success	201		{object}	domain.Education
//	@Router		/v1/employee/education [post].
func (h *ProfilesHandler) HandleAddEducation(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.EducationRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := h.ProfileService.AddEducation(r.Context(), domain.Education{
		UserID:        identity(r).UserID,
		Level:         req.Level,
		SchoolName:    req.SchoolName,
		YearGraduated: req.YearGraduated,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

// HandleDeleteEducation handles DELETE /v1/employee/education/{id}
//
//	@Summary	Delete education
//	@Tags		Employee
//	@Param		id	path	int	true	"Education ID"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	pnpsdk.ErrorResponse
//	@Router		/v1/employee/education/{id} [delete].
func (h *ProfilesHandler) HandleDeleteEducation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.ProfileService.DeleteEducation(r.Context(), identity(r).UserID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetApplicant handles GET /v1/applicant/profile
//
//	@Summary	Applicant profile
//	@Tags		Applicant
//	@Produce	json
//	@Success	200	{object}	domain.ApplicantProfile
//	@Router		/v1/applicant/profile [get].
func (h *ProfilesHandler) HandleGetApplicant(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.ApplicantProfile(r.Context(), identity(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandlePutApplicant handles PUT /v1/applicant/profile
//
//	@Summary	Save applicant profile
//	@Tags		Applicant
//	@Accept		json
//	@Produce	json
//	@Param		request	body		pnpsdk.ApplicantProfileRequest	true	"Contact details"
//	@Success	200		{object}	domain.ApplicantProfile
//	@Router		/v1/applicant/profile [put].
func (h *ProfilesHandler) HandlePutApplicant(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.ApplicantProfileRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.ProfileService.SaveApplicantProfile(r.Context(), domain.ApplicantProfile{
		UserID:     identity(r).UserID,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleGetAdmin handles GET /v1/admin/profile
//
//	@Summary	Admin profile
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	domain.AdminProfile
//	@Router		/v1/admin/profile [get].
func (h *ProfilesHandler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.AdminProfile(r.Context(), identity(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandlePutAdmin handles PUT /v1/admin/profile
//
//	@Summary	Save admin profile
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		pnpsdk.AdminProfileRequest	true	"Profile"
//	@Success	200		{object}	domain.AdminProfile
//	@Router		/v1/admin/profile [put].
func (h *ProfilesHandler) HandlePutAdmin(w http.ResponseWriter, r *http.Request) {
	var req pnpsdk.AdminProfileRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.ProfileService.SaveAdminProfile(r.Context(), domain.AdminProfile{
		UserID:         identity(r).UserID,
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleListApplicants handles GET /v1/admin/applicants
//
//	@Summary	List applicants
//	@Tags		Admin
//	@Produce	json
//	@Param		page	query		int		false	"Page number"
//	@Param		status	query		string	false	"Pending, Approved or Rejected"
//	@Success	200		{object}	domain.Page[domain.ApplicantProfile]
//	@Router		/v1/admin/applicants [get].
func (h *ProfilesHandler) HandleListApplicants(w http.ResponseWriter, r *http.Request) {
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))
	page, err := h.ProfileService.ListApplicants(r.Context(), status, pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// HandleSetApplicationStatus handles PATCH /v1/admin/applicants/{id}
//
//	@Summary		Decide an application
//	@Description	Approval and rejection notify the applicant.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Applicant user ID"
//	@Param			request	body		pnpsdk.ApplicationStatusRequest	true	"New status"
//	@Success		200		{object}	domain.ApplicantProfile
//	@Failure		404		{object}	pnpsdk.ErrorResponse
//	@Router			/v1/admin/applicants/{id} [patch].
func (h *ProfilesHandler) HandleSetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req pnpsdk.ApplicationStatusRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.ProfileService.SetApplicationStatus(r.Context(), id, domain.ApplicationStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}
