package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/repositories"
	"dashboard-project/backend/dashboard-service/services"
	"dashboard-project/backend/dashboard-service/utils"

	"gopkg.in/yaml.v3"
)

type User struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Email      string  `yaml:"email"`
	Password   string  `yaml:"password"`
	Role       string  `yaml:"role"`
	Department string  `yaml:"department"`
	Avatar     *string `yaml:"avatar,omitempty"`
}

type Project struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Progress    int      `yaml:"progress"`
	StartDate   *string  `yaml:"start_date,omitempty"`
	EndDate     *string  `yaml:"end_date,omitempty"`
	TeamMembers []string `yaml:"team_members"`
	CreatedBy   string   `yaml:"created_by"`
}

type Task struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Priority    string   `yaml:"priority"`
	AssignedTo  []string `yaml:"assigned_to"`
	ProjectID   *string  `yaml:"project_id,omitempty"`
	DueDate     *string  `yaml:"due_date,omitempty"`
	CreatedBy   string   `yaml:"created_by"`
	// Koliko dana pre ucitavanja je zadatak kreiran.
	AgeDays int `yaml:"age_days"`
}

// Fixture is the content of a seed file.
type Fixture struct {
	Users    []User    `yaml:"users"`
	Projects []Project `yaml:"projects"`
	Tasks    []Task    `yaml:"tasks"`
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Counts reports how many records of each kind were written.
type Counts struct {
	Users    int
	Projects int
	Tasks    int
}

// Apply wipes the four collections and writes the fixture. Passwords are
// stored as bcrypt hashes.
func Apply(ctx context.Context, stores *repositories.Stores, f *Fixture, now time.Time) (Counts, error) {
	var counts Counts
	now = now.UTC()

	for name, wipe := range map[string]func(context.Context) error{
		repositories.CredentialsCollection: stores.Credentials.DeleteAll,
		repositories.UsersCollection:       stores.Users.DeleteAll,
		repositories.TasksCollection:       stores.Tasks.DeleteAll,
		repositories.ProjectsCollection:    stores.Projects.DeleteAll,
	} {
		if err := wipe(ctx); err != nil {
			return counts, fmt.Errorf("wipe %s: %w", name, err)
		}
	}

	for _, u := range f.Users {
		if err := utils.ValidatePassword(u.Password); err != nil {
			return counts, fmt.Errorf("user %s: %w", u.Email, err)
		}
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return counts, err
		}
		id := models.ID(u.ID)
		credID := models.ID("auth-" + u.ID)
		email := services.NormalizeEmail(u.Email)
		if _, err := stores.Credentials.Insert(ctx, &models.Credential{ID: credID, UserID: id, Email: email, PasswordHash: hash, CreatedAt: now}); err != nil {
			return counts, fmt.Errorf("credential %s: %w", email, err)
		}
		user := &models.User{
			ID:         id,
			AuthID:     credID,
			Name:       u.Name,
			Email:      email,
			Role:       u.Role,
			Department: u.Department,
			Avatar:     u.Avatar,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := stores.Users.Insert(ctx, user); err != nil {
			return counts, fmt.Errorf("user %s: %w", email, err)
		}
		counts.Users++
	}

	for _, p := range f.Projects {
		project := &models.Project{
			ID:          models.ID(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Status:      models.ProjectStatus(p.Status),
			Progress:    p.Progress,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			TeamMembers: models.Members(p.TeamMembers...),
			CreatedBy:   models.ID(p.CreatedBy),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if project.Status == "" {
			project.Status = models.ProjectPlanning
		}
		if _, err := stores.Projects.Insert(ctx, project); err != nil {
			return counts, fmt.Errorf("project %s: %w", p.ID, err)
		}
		counts.Projects++
	}

	for _, t := range f.Tasks {
		created := now.AddDate(0, 0, -t.AgeDays)
		task := &models.Task{
			ID:          models.ID(t.ID),
			Title:       t.Title,
			Description: t.Description,
			Status:      models.TaskStatus(t.Status),
			Priority:    models.TaskPriority(t.Priority),
			AssignedTo:  models.Members(t.AssignedTo...),
			DueDate:     t.DueDate,
			CreatedBy:   models.ID(t.CreatedBy),
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if t.ProjectID != nil {
			pid := models.ID(*t.ProjectID)
			task.ProjectID = &pid
		}
		if task.Status == "" {
			task.Status = models.StatusTodo
		}
		if task.Priority == "" {
			task.Priority = models.PriorityMedium
		}
		if _, err := stores.Tasks.Insert(ctx, task); err != nil {
			return counts, fmt.Errorf("task %s: %w", t.ID, err)
		}
		counts.Tasks++
	}

	logging.Logger.Infof("Event ID: SEED_COMPLETE, Description: Inserted %d users, %d projects, %d tasks", counts.Users, counts.Projects, counts.Tasks)
	return counts, nil
}
