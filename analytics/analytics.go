// Package analytics computes the counts and rates shown on the dashboard and
// report pages. Everything is recomputed from full in-memory lists.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"dashboard-project/backend/dashboard-service/models"

	"golang.org/x/exp/constraints"
)

// Percent returns round(100*part/total), or 0 when total is 0.
func Percent[T constraints.Integer](part, total T) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// roundedDiv returns round(num/den), or 0 when den is 0.
func roundedDiv[T constraints.Integer](num, den T) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den)))
}

func CompletionRate(completed, total int) int {
	return Percent(completed, total)
}

type TaskStatusCounts struct {
	Total        int `json:"total"`
	Todo         int `json:"todo"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	Unrecognized int `json:"unrecognized"`
}

func (c TaskStatusCounts) CompletionRate() int {
	return CompletionRate(c.Completed, c.Total)
}

// TaskStatusBreakdown counts tasks per status. Statuses outside the known
// set are counted as unrecognized and in the total only.
func TaskStatusBreakdown(tasks []models.Task) TaskStatusCounts {
	c := TaskStatusCounts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusTodo:
			c.Todo++
		case models.StatusInProgress:
			c.InProgress++
		case models.StatusCompleted:
			c.Completed++
		default:
			c.Unrecognized++
		}
	}
	return c
}

type TaskPriorityCounts struct {
	Low          int `json:"low"`
	Medium       int `json:"medium"`
	High         int `json:"high"`
	Unrecognized int `json:"unrecognized"`
}

func TaskPriorityBreakdown(tasks []models.Task) TaskPriorityCounts {
	var c TaskPriorityCounts
	for _, t := range tasks {
		switch t.Priority {
		case models.PriorityLow:
			c.Low++
		case models.PriorityMedium:
			c.Medium++
		case models.PriorityHigh:
			c.High++
		default:
			c.Unrecognized++
		}
	}
	return c
}

type ProjectStatusCounts struct {
	Total        int `json:"total"`
	Planning     int `json:"planning"`
	Active       int `json:"active"`
	Completed    int `json:"completed"`
	OnHold       int `json:"on_hold"`
	Unrecognized int `json:"unrecognized"`
}

func ProjectStatusBreakdown(projects []models.Project) ProjectStatusCounts {
	c := ProjectStatusCounts{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case models.ProjectPlanning:
			c.Planning++
		case models.ProjectActive:
			c.Active++
		case models.ProjectCompleted:
			c.Completed++
		case models.ProjectOnHold:
			c.OnHold++
		default:
			c.Unrecognized++
		}
	}
	return c
}

// AverageProgress is the rounded mean progress, 0 for no projects. Stored
// values are used as-is, even outside 0..100.
func AverageProgress(projects []models.Project) int {
	var sum int64
	for _, p := range projects {
		sum += int64(p.Progress)
	}
	return roundedDiv(sum, int64(len(projects)))
}

type MemberStats struct {
	UserID    models.ID `json:"user_id"`
	Name      string    `json:"name"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Rate      int       `json:"rate"`
}

// MemberProductivity reports, per user, the tasks assigned to them and how
// many of those are completed.
func MemberProductivity(users []models.User, tasks []models.Task) []MemberStats {
	stats := make([]MemberStats, 0, len(users))
	for _, u := range users {
		s := MemberStats{UserID: u.ID, Name: u.Name}
		for _, t := range tasks {
			if !t.AssignedTo.Contains(string(u.ID)) {
				continue
			}
			s.Total++
			if t.Status == models.StatusCompleted {
				s.Completed++
			}
		}
		s.Rate = CompletionRate(s.Completed, s.Total)
		stats = append(stats, s)
	}
	return stats
}

type DepartmentStats struct {
	Name      string `json:"name"`
	Members   int    `json:"members"`
	Tasks     int    `json:"tasks"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"`
}

// DepartmentRollup groups users by department, in order of first
// appearance. Users without a department are left out of every group. A task
// assigned to several members of one department counts once for it.
func DepartmentRollup(users []models.User, tasks []models.Task) []DepartmentStats {
	order, members := groupByDepartment(users)

	stats := make([]DepartmentStats, 0, len(order))
	for _, dept := range order {
		ids := members[dept]
		s := DepartmentStats{Name: dept, Members: len(ids)}

		seen := make(map[string]bool)
		for i, t := range tasks {
			key := taskKey(t, i)
			if seen[key] || !assignedToAny(t, ids) {
				continue
			}
			seen[key] = true
			s.Tasks++
			if t.Status == models.StatusCompleted {
				s.Completed++
			}
		}
		s.Rate = CompletionRate(s.Completed, s.Tasks)
		stats = append(stats, s)
	}
	return stats
}

var (
	managerRoleMarkers = []string{"Manager", "Responsable"}
	internRoleMarkers  = []string{"Stagiaire", "Intern"}
)

type TeamStats struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Managers   int    `json:"managers"`
	Interns    int    `json:"interns"`
}

// TeamComposition counts, per department, all members, the managers and the
// interns, judged by the role label.
func TeamComposition(users []models.User) []TeamStats {
	order := make([]string, 0)
	byDept := make(map[string]*TeamStats)
	for _, u := range users {
		if u.Department == "" {
			continue
		}
		s, ok := byDept[u.Department]
		if !ok {
			s = &TeamStats{Department: u.Department}
			byDept[u.Department] = s
			order = append(order, u.Department)
		}
		s.Total++
		if containsAny(u.Role, managerRoleMarkers) {
			s.Managers++
		}
		if containsAny(u.Role, internRoleMarkers) {
			s.Interns++
		}
	}

	out := make([]TeamStats, 0, len(order))
	for _, d := range order {
		out = append(out, *byDept[d])
	}
	return out
}

// UrgentTasks returns high priority tasks that are not completed.
func UrgentTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.Priority == models.PriorityHigh && t.Status != models.StatusCompleted {
			out = append(out, t)
		}
	}
	return out
}

// RecentTasks returns up to n tasks, newest first.
func RecentTasks(tasks []models.Task, n int) []models.Task {
	sorted := append([]models.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

const FilterAll = "all"

type TaskFilter struct {
	Search   string
	Status   string
	Priority string
}

// FilterTasks applies the task list filters. Search matches title or
// description case-insensitively; an empty or "all" status/priority matches
// everything.
func FilterTasks(tasks []models.Task, f TaskFilter) []models.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Status != "" && f.Status != FilterAll && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && f.Priority != FilterAll && string(t.Priority) != f.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

func groupByDepartment(users []models.User) ([]string, map[string][]string) {
	order := make([]string, 0)
	members := make(map[string][]string)
	for _, u := range users {
		if u.Department == "" {
			continue
		}
		if _, ok := members[u.Department]; !ok {
			order = append(order, u.Department)
		}
		members[u.Department] = append(members[u.Department], string(u.ID))
	}
	return order, members
}

func assignedToAny(t models.Task, ids []string) bool {
	for _, id := range ids {
		if t.AssignedTo.Contains(id) {
			return true
		}
	}
	return false
}

func taskKey(t models.Task, i int) string {
	if t.ID != "" {
		return "id:" + string(t.ID)
	}
	return "pos:" + strconv.Itoa(i)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
