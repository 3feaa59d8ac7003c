package services

import (
	"context"

	"dashboard-project/backend/dashboard-service/analytics"
	"dashboard-project/backend/dashboard-service/models"
)

type ReportService struct {
	users    *UserService
	tasks    *TaskService
	projects *ProjectService
}

func NewReportService(users *UserService, tasks *TaskService, projects *ProjectService) *ReportService {
	return &ReportService{users: users, tasks: tasks, projects: projects}
}

// load reads the three collections. Each one degrades to an empty list on
// its own, so a failing collection never hides the others.
func (s *ReportService) load(ctx context.Context) ([]models.User, []models.Task, []models.Project) {
	return s.users.List(ctx), s.tasks.List(ctx, analytics.TaskFilter{}), s.projects.List(ctx)
}

func (s *ReportService) Report(ctx context.Context) analytics.Report {
	return analytics.BuildReport(s.load(ctx))
}

func (s *ReportService) Dashboard(ctx context.Context) analytics.Dashboard {
	return analytics.BuildDashboard(s.load(ctx))
}
