package analytics

import "dashboard-project/backend/dashboard-service/models"

const recentTasksLimit = 5

// Report is the content of the reports page.
type Report struct {
	Tasks           TaskStatusCounts    `json:"tasks"`
	Priorities      TaskPriorityCounts  `json:"priorities"`
	CompletionRate  int                 `json:"completion_rate"`
	TeamSize        int                 `json:"team_size"`
	Projects        ProjectStatusCounts `json:"projects"`
	AverageProgress int                 `json:"average_progress"`
	Members         []MemberStats       `json:"members"`
	Departments     []DepartmentStats   `json:"departments"`
	Teams           []TeamStats         `json:"teams"`
}

func BuildReport(users []models.User, tasks []models.Task, projects []models.Project) Report {
	status := TaskStatusBreakdown(tasks)
	return Report{
		Tasks:           status,
		Priorities:      TaskPriorityBreakdown(tasks),
		CompletionRate:  status.CompletionRate(),
		TeamSize:        len(users),
		Projects:        ProjectStatusBreakdown(projects),
		AverageProgress: AverageProgress(projects),
		Members:         MemberProductivity(users, tasks),
		Departments:     DepartmentRollup(users, tasks),
		Teams:           TeamComposition(users),
	}
}

type TaskSummary struct {
	ID        models.ID           `json:"id"`
	Title     string              `json:"title"`
	Status    models.TaskStatus   `json:"status"`
	Priority  models.TaskPriority `json:"priority"`
	Assignees string              `json:"assignees"`
	DueDate   *string             `json:"due_date"`
}

type ProjectSummary struct {
	ID       models.ID            `json:"id"`
	Name     string               `json:"name"`
	Status   models.ProjectStatus `json:"status"`
	Progress int                  `json:"progress"`
	Members  []string             `json:"members"`
}

// Dashboard is the content of the landing page.
type Dashboard struct {
	TeamSize       int              `json:"team_size"`
	TotalTasks     int              `json:"total_tasks"`
	CompletedTasks int              `json:"completed_tasks"`
	ActiveProjects int              `json:"active_projects"`
	CompletionRate int              `json:"completion_rate"`
	RecentTasks    []TaskSummary    `json:"recent_tasks"`
	UrgentTasks    []TaskSummary    `json:"urgent_tasks"`
	Projects       []ProjectSummary `json:"projects"`
}

func BuildDashboard(users []models.User, tasks []models.Task, projects []models.Project) Dashboard {
	status := TaskStatusBreakdown(tasks)
	d := Dashboard{
		TeamSize:       len(users),
		TotalTasks:     status.Total,
		CompletedTasks: status.Completed,
		ActiveProjects: ProjectStatusBreakdown(projects).Active,
		CompletionRate: status.CompletionRate(),
		RecentTasks:    summarizeTasks(RecentTasks(tasks, recentTasksLimit), users),
		UrgentTasks:    summarizeTasks(UrgentTasks(tasks), users),
		Projects:       make([]ProjectSummary, 0, len(projects)),
	}
	for _, p := range projects {
		d.Projects = append(d.Projects, ProjectSummary{
			ID:       p.ID,
			Name:     p.Name,
			Status:   p.Status,
			Progress: p.Progress,
			Members:  models.ResolveMemberNames(p.TeamMembers, users),
		})
	}
	return d
}

func summarizeTasks(tasks []models.Task, users []models.User) []TaskSummary {
	out := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskSummary{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			Assignees: models.FormatMembers(t.AssignedTo, users),
			DueDate:   t.DueDate,
		})
	}
	return out
}
