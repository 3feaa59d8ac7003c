package handlers

import (
	"net/http"

	"dashboard-project/backend/dashboard-service/services"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Report(r.Context()))
}

func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Dashboard(r.Context()))
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
