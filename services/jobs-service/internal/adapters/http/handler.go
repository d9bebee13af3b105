package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/application"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/contracts"
)

type Handler struct {
	service  *application.Service
	validate *httpx.Validator
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service, validate: httpx.NewValidator()}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeDomainError(w, r, err)
		return false
	}
	return true
}

func actorFromRequest(r *http.Request) application.Actor {
	principal := httpx.PrincipalFromContext(r.Context())
	return application.Actor{
		SubjectID: principal.SubjectID,
		Role:      principal.Role,
		RequestID: httpx.RequestIDFromContext(r.Context()),
	}
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateJobRequest
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.service.CreateJob(r.Context(), actorFromRequest(r), application.CreateJobInput{
		CustomerID:    req.CustomerID,
		ConveyancerID: req.ConveyancerID,
		State:         req.State,
		PropertyType:  req.PropertyType,
		Status:        req.Status,
		Contacts:      req.Contacts,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, job)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	jobs, err := h.service.ListJobs(r.Context(), actorFromRequest(r), r.URL.Query().Get("account_id"), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, jobs)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.GetJob(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, job)
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetContact(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view)
}

func (h *Handler) unlockContact(w http.ResponseWriter, r *http.Request) {
	var req contracts.UnlockContactRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.UnlockContact(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), req.Token)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view)
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var req contracts.PostMessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	msg, err := h.service.PostMessage(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), application.PostMessageInput{
		Sender: req.Sender,
		Body:   req.Body,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, msg)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.ListMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, msgs)
}

func (h *Handler) complianceFlags(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	flags, err := h.service.ComplianceFlags(r.Context(), jobID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if flags == nil {
		flags = []string{}
	}
	httpx.WriteSuccess(w, http.StatusOK, contracts.ComplianceResponse{JobID: jobID, Flags: flags})
}

func (h *Handler) addMilestone(w http.ResponseWriter, r *http.Request) {
	var req contracts.MilestoneRequest
	if !h.decode(w, r, &req) {
		return
	}
	m, err := h.service.AddMilestone(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), application.MilestoneInput{
		Name:        req.Name,
		AmountCents: req.AmountCents,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, m)
}

func (h *Handler) listMilestones(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListMilestones(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, list)
}
