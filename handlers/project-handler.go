package handlers

import (
	"net/http"

	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/services"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), models.ID(mux.Vars(r)["id"]))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	caps, err := h.service.Capabilities(r.Context(), session, models.ID(mux.Vars(r)["id"]))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, models.ID(mux.Vars(r)["id"]), http.StatusOK)
}

func (h *ProjectHandler) save(w http.ResponseWriter, r *http.Request, id models.ID, status int) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in services.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	project, err := h.service.Save(r.Context(), session, id, in)
	if err != nil {
		writeWriteError(w, "Failed to save project", err)
		return
	}
	writeJSON(w, status, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), session, models.ID(mux.Vars(r)["id"])); err != nil {
		writeWriteError(w, "Failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
