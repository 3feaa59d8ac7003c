package handlers

import (
	"net/http"

	"dashboard-project/backend/dashboard-service/analytics"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks := h.service.List(r.Context(), analytics.TaskFilter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	})
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), models.ID(mux.Vars(r)["id"]))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
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

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, models.ID(mux.Vars(r)["id"]), http.StatusOK)
}

func (h *TaskHandler) save(w http.ResponseWriter, r *http.Request, id models.ID, status int) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in services.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	task, err := h.service.Save(r.Context(), session, id, in)
	if err != nil {
		writeWriteError(w, "Failed to save task", err)
		return
	}
	writeJSON(w, status, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), session, models.ID(mux.Vars(r)["id"])); err != nil {
		writeWriteError(w, "Failed to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
