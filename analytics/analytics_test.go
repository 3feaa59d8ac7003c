package analytics

import (
	"testing"
	"time"

	"dashboard-project/backend/dashboard-service/models"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 4, 75},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := CompletionRate(tt.completed, tt.total); got != tt.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
	if got := Percent(uint8(1), uint8(8)); got != 13 {
		t.Errorf("Percent(1, 8) = %d, want 13", got)
	}
}

func TestTaskStatusBreakdownUnknownStatus(t *testing.T) {
	tasks := []models.Task{
		{Status: "todo"},
		{Status: "done"},
		{Status: "completed"},
		{Status: "completed"},
	}
	got := TaskStatusBreakdown(tasks)
	want := TaskStatusCounts{Total: 4, Todo: 1, Completed: 2, Unrecognized: 1}
	if got != want {
		t.Fatalf("TaskStatusBreakdown() = %+v, want %+v", got, want)
	}
	if got.CompletionRate() != 50 {
		t.Fatalf("completion rate = %d", got.CompletionRate())
	}
}

func TestDepartmentRollupDeduplicatesTasks(t *testing.T) {
	users := []models.User{
		{ID: "m1", Department: "Tech"},
		{ID: "m2", Department: "Tech"},
		{ID: "m3", Department: ""},
	}
	tasks := []models.Task{
		{ID: "t1", Status: models.StatusCompleted, AssignedTo: models.Members("m1", "m2")},
		{ID: "t2", Status: models.StatusTodo, AssignedTo: models.Members("m3")},
	}

	got := DepartmentRollup(users, tasks)
	if len(got) != 1 {
		t.Fatalf("expected one department, got %+v", got)
	}
	want := DepartmentStats{Name: "Tech", Members: 2, Tasks: 1, Completed: 1, Rate: 100}
	if got[0] != want {
		t.Fatalf("DepartmentRollup() = %+v, want %+v", got[0], want)
	}
}

func TestDepartmentRollupOrderAndRates(t *testing.T) {
	users := []models.User{
		{ID: "1", Department: "Technique"},
		{ID: "2", Department: "Marketing"},
		{ID: "3", Department: "Technique"},
	}
	tasks := []models.Task{
		{ID: "a", Status: models.StatusCompleted, AssignedTo: models.Members("1")},
		{ID: "b", Status: models.StatusTodo, AssignedTo: models.Members("3")},
		{ID: "c", Status: models.StatusInProgress, AssignedTo: models.Members("2")},
		{ID: "c", Status: models.StatusInProgress, AssignedTo: models.Members("2")},
	}
	got := DepartmentRollup(users, tasks)
	if len(got) != 2 || got[0].Name != "Technique" || got[1].Name != "Marketing" {
		t.Fatalf("unexpected departments %+v", got)
	}
	if got[0].Tasks != 2 || got[0].Rate != 50 {
		t.Fatalf("technique = %+v", got[0])
	}
	if got[1].Tasks != 1 || got[1].Rate != 0 {
		t.Fatalf("marketing = %+v", got[1])
	}
}

func TestMemberProductivity(t *testing.T) {
	users := []models.User{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}
	tasks := []models.Task{
		{Status: models.StatusCompleted, AssignedTo: models.Members("1", "2")},
		{Status: models.StatusTodo, AssignedTo: models.Members("1")},
		{Status: models.StatusCompleted, AssignedTo: models.NewMemberSet(`["1"]`)},
	}
	got := MemberProductivity(users, tasks)
	if got[0].Total != 3 || got[0].Completed != 2 || got[0].Rate != 67 {
		t.Fatalf("member 1 = %+v", got[0])
	}
	if got[1].Total != 1 || got[1].Rate != 100 {
		t.Fatalf("member 2 = %+v", got[1])
	}

	idle := MemberProductivity([]models.User{{ID: "9"}}, tasks)
	if idle[0].Total != 0 || idle[0].Rate != 0 {
		t.Fatalf("idle member = %+v", idle[0])
	}
}

func TestTeamComposition(t *testing.T) {
	users := []models.User{
		{Department: "Technique", Role: "Responsable Technique"},
		{Department: "Technique", Role: "Manager Technique"},
		{Department: "Intégrateur", Role: "Stagiaire Intégrateur Odoo"},
		{Department: "", Role: "Directeur"},
	}
	got := TeamComposition(users)
	if len(got) != 2 {
		t.Fatalf("TeamComposition() = %+v", got)
	}
	if got[0] != (TeamStats{Department: "Technique", Total: 2, Managers: 2}) {
		t.Fatalf("technique = %+v", got[0])
	}
	if got[1] != (TeamStats{Department: "Intégrateur", Total: 1, Interns: 1}) {
		t.Fatalf("integrateur = %+v", got[1])
	}
}

func TestProjectAggregates(t *testing.T) {
	projects := []models.Project{
		{Status: models.ProjectActive, Progress: 50},
		{Status: models.ProjectPlanning, Progress: 25},
		{Status: "archived", Progress: 0},
	}
	c := ProjectStatusBreakdown(projects)
	if c.Active != 1 || c.Planning != 1 || c.Unrecognized != 1 || c.Total != 3 {
		t.Fatalf("ProjectStatusBreakdown() = %+v", c)
	}
	if got := AverageProgress(projects); got != 25 {
		t.Fatalf("AverageProgress() = %d", got)
	}
	if got := AverageProgress(nil); got != 0 {
		t.Fatalf("AverageProgress(nil) = %d", got)
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []models.Task{
		{Title: "Deploy Odoo", Status: models.StatusTodo, Priority: models.PriorityHigh},
		{Title: "Campaign", Description: "odoo newsletter", Status: models.StatusCompleted, Priority: models.PriorityLow},
		{Title: "Audit", Status: models.StatusTodo, Priority: models.PriorityLow},
	}

	if got := FilterTasks(tasks, TaskFilter{Search: "ODOO"}); len(got) != 2 {
		t.Fatalf("search returned %d tasks", len(got))
	}
	if got := FilterTasks(tasks, TaskFilter{Status: "todo", Priority: "low"}); len(got) != 1 || got[0].Title != "Audit" {
		t.Fatalf("status+priority returned %+v", got)
	}
	if got := FilterTasks(tasks, TaskFilter{Status: FilterAll, Priority: FilterAll}); len(got) != 3 {
		t.Fatalf("all filter returned %d tasks", len(got))
	}
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	users := []models.User{{ID: "1", Name: "Mohamed"}}

	var tasks []models.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, models.Task{
			ID:         models.ID(string(rune('a' + i))),
			Status:     models.StatusTodo,
			Priority:   models.PriorityMedium,
			CreatedAt:  now.Add(time.Duration(i) * time.Hour),
			AssignedTo: models.Members("1"),
		})
	}
	tasks[0].Priority = models.PriorityHigh
	tasks[1].Priority = models.PriorityHigh
	tasks[1].Status = models.StatusCompleted

	projects := []models.Project{{ID: "p", Status: models.ProjectActive, TeamMembers: models.Members("1", "404")}}

	d := BuildDashboard(users, tasks, projects)
	if len(d.RecentTasks) != recentTasksLimit || d.RecentTasks[0].ID != "g" {
		t.Fatalf("recent tasks = %+v", d.RecentTasks)
	}
	if len(d.UrgentTasks) != 1 || d.UrgentTasks[0].ID != "a" || d.UrgentTasks[0].Assignees != "Mohamed" {
		t.Fatalf("urgent tasks = %+v", d.UrgentTasks)
	}
	if d.ActiveProjects != 1 || len(d.Projects[0].Members) != 2 || d.Projects[0].Members[1] != "ID: 404" {
		t.Fatalf("projects = %+v", d.Projects)
	}
	if d.CompletionRate != 14 {
		t.Fatalf("completion rate = %d", d.CompletionRate)
	}
}
