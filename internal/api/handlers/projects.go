package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hugh/buildtrack/internal/api/dto"
	"github.com/hugh/buildtrack/internal/api/middleware"
	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
	"github.com/hugh/buildtrack/internal/tenant"
)

// ProjectHandler serves tenant-scoped project CRUD. Writes go through the
// scoped write store; reads take the tenant id from the request scope and hit
// the read store explicitly.
type ProjectHandler struct {
	writes *store.WriteStore[models.Project]
	reads  *store.ReadStore[models.Project]
	logger *slog.Logger
}

func NewProjectHandler(writes *store.WriteStore[models.Project], reads *store.ReadStore[models.Project], logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{writes: writes, reads: reads, logger: logger}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.requireScope(w, r)
	if !ok {
		return
	}

	params := dto.PaginationParams{
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	params.Normalize()

	projects, err := h.reads.GetPaged(r.Context(), scope.TenantID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("listing projects", "tenant_id", scope.TenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list projects", nil)
		return
	}

	total, err := h.reads.Count(r.Context(), scope.TenantID)
	if err != nil {
		h.logger.Error("counting projects", "tenant_id", scope.TenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list projects", nil)
		return
	}

	totalPages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       projects,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	})
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireScope(w, r); !ok {
		return
	}

	var req dto.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Status != "" {
		project.Status = models.ProjectStatus(req.Status)
	}

	// TenantID is stamped by the write store from the request scope.
	if err := h.writes.Add(r.Context(), &project); err != nil {
		h.logger.Error("creating project", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create project", nil)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.requireScope(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", nil)
		return
	}

	project, err := h.reads.GetByID(r.Context(), id, scope.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found", nil)
			return
		}
		h.logger.Error("fetching project", "project_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch project", nil)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.requireScope(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", nil)
		return
	}

	var req dto.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	project, err := h.reads.GetByID(r.Context(), id, scope.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found", nil)
			return
		}
		h.logger.Error("fetching project", "project_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update project", nil)
		return
	}

	project.Name = req.Name
	project.Description = req.Description
	project.Location = req.Location
	project.Budget = req.Budget
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
	if req.Status != "" {
		project.Status = models.ProjectStatus(req.Status)
	}

	if err := h.writes.Update(r.Context(), project); err != nil {
		h.logger.Error("updating project", "project_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update project", nil)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.requireScope(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", nil)
		return
	}

	if err := h.writes.DeleteByID(r.Context(), id, scope.TenantID); err != nil {
		h.logger.Error("deleting project", "project_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete project", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Admin returns a tenant summary. Routed behind RequireRole(Admin, SuperAdmin).
func (h *ProjectHandler) Admin(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.requireScope(w, r)
	if !ok {
		return
	}

	total, err := h.reads.Count(r.Context(), scope.TenantID)
	if err != nil {
		h.logger.Error("counting projects", "tenant_id", scope.TenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load summary", nil)
		return
	}

	claims := middleware.GetClaims(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenantId":      scope.TenantID.String(),
		"totalProjects": total,
		"requestedBy":   claims.Email,
	})
}

// requireScope loads the tenant scope or answers 401. A missing scope behind
// the auth middleware is a programming error, so it is logged loudly.
func (h *ProjectHandler) requireScope(w http.ResponseWriter, r *http.Request) (tenant.Scope, bool) {
	scope, err := tenant.FromContext(r.Context())
	if err != nil {
		h.logger.Error("request reached handler without tenant scope", "path", r.URL.Path)
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return tenant.Scope{}, false
	}
	return scope, true
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}
