package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashboard-project/backend/dashboard-service/analytics"
	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/permissions"
	"dashboard-project/backend/dashboard-service/repositories"

	"github.com/google/uuid"
)

// Notifier is told about users newly attached to a task or a project.
type Notifier interface {
	NotifyAssigned(ctx context.Context, userIDs []string, message string)
}

type TaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssignedTo  models.MemberSet    `json:"assigned_to"`
	ProjectID   *models.ID          `json:"project_id"`
	DueDate     *string             `json:"due_date"`
}

type TaskService struct {
	tasks       repositories.Collection[models.Task]
	notifier    Notifier
	settleDelay time.Duration
	now         func() time.Time
}

func NewTaskService(tasks repositories.Collection[models.Task], notifier Notifier, settleDelay time.Duration) *TaskService {
	return &TaskService{
		tasks:       tasks,
		notifier:    notifier,
		settleDelay: settleDelay,
		now:         time.Now,
	}
}

// List returns all tasks, newest first, narrowed by filter. A failed read is
// logged and yields an empty list.
func (s *TaskService) List(ctx context.Context, filter analytics.TaskFilter) []models.Task {
	tasks, err := s.tasks.List(ctx, repositories.ListOptions{}.OrderBy("created_at", false))
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_LIST_FAILED, Description: Failed to fetch tasks: %v", err)
		return []models.Task{}
	}
	return analytics.FilterTasks(tasks, filter)
}

func (s *TaskService) Get(ctx context.Context, id models.ID) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if errors.Is(err, repositories.ErrNoRecord) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, err
}

// Capabilities evaluates the session user against task id, or against
// creation mode when id is empty.
func (s *TaskService) Capabilities(ctx context.Context, session models.Session, id models.ID) (permissions.Capabilities, error) {
	if id == "" {
		return permissions.ForTask(session.UserID, nil), nil
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return permissions.Capabilities{}, err
	}
	return permissions.ForTask(session.UserID, task), nil
}

// validateLimited proverava samo polja koja clan tima sme da menja.
func (in *TaskInput) validateLimited() error {
	if !in.Status.Valid() {
		return invalidInput("unknown task status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return invalidInput("unknown task priority %q", in.Priority)
	}
	return nil
}

func (in *TaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = models.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := in.validateLimited(); err != nil {
		return err
	}
	if in.AssignedTo.Malformed {
		return invalidInput("assigned_to is not a list of user ids")
	}
	if in.AssignedTo.IDs == nil {
		in.AssignedTo = models.Members()
	}
	if in.ProjectID != nil && *in.ProjectID == "" {
		in.ProjectID = nil
	}
	in.DueDate = blankToNil(in.DueDate)
	return nil
}

func (in TaskInput) patch(now time.Time) models.Patch {
	return models.Patch{
		"title":       in.Title,
		"description": in.Description,
		"status":      in.Status,
		"priority":    in.Priority,
		"assigned_to": in.AssignedTo,
		"project_id":  in.ProjectID,
		"due_date":    in.DueDate,
		"updated_at":  now,
	}
}

// Save creates a task when id is empty, otherwise updates it with the fields
// the session user may change. Assignees that are not the creator get only
// status and priority written.
func (s *TaskService) Save(ctx context.Context, session models.Session, id models.ID, in TaskInput) (*models.Task, error) {
	if session.UserID == "" {
		return nil, ErrSessionExpired
	}
	if id == "" {
		return s.create(ctx, session, in)
	}
	return s.update(ctx, session, id, in)
}

func (s *TaskService) create(ctx context.Context, session models.Session, in TaskInput) (*models.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, invalidInput("title is required")
	}
	now := s.now().UTC()
	task := &models.Task{
		ID:          models.ID(uuid.NewString()),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		ProjectID:   in.ProjectID,
		DueDate:     in.DueDate,
		CreatedBy:   session.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	saved, err := s.tasks.Insert(ctx, task)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_CREATE_FAILED, Description: %v", err)
		return nil, err
	}
	if saved == nil {
		return nil, notConfirmed("task")
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created by %s", saved.ID, session.UserID)

	settle(ctx, s.settleDelay)
	s.notify(ctx, session, saved.AssignedTo.IDs, nil, fmt.Sprintf("You have been assigned to task: %s", saved.Title))
	return saved, nil
}

func (s *TaskService) update(ctx context.Context, session models.Session, id models.ID, in TaskInput) (*models.Task, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	caps := permissions.ForTask(session.UserID, existing)
	if !caps.CanMutate() {
		return nil, fmt.Errorf("task %s: %w", id, ErrForbidden)
	}
	// Izostavljena polja zadrzavaju postojecu vrednost.
	if in.Status == "" {
		in.Status = existing.Status
	}
	if in.Priority == "" {
		in.Priority = existing.Priority
	}
	if caps.LimitedOnly() {
		if err := in.validateLimited(); err != nil {
			return nil, err
		}
	} else {
		if err := in.normalize(); err != nil {
			return nil, err
		}
		if in.Title == "" {
			return nil, invalidInput("title is required")
		}
	}

	patch, err := permissions.ScopePatch(caps, in.patch(s.now().UTC()), permissions.TaskLimitedFields, "updated_at")
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, ErrForbidden)
	}

	saved, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_UPDATE_FAILED, Description: Task %s: %v", id, err)
		return nil, err
	}
	if saved == nil {
		logging.Logger.Warnf("Event ID: TASK_UPDATE_UNCONFIRMED, Description: Update of task %s returned no row", id)
		return nil, notConfirmed("task")
	}
	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %s updated by %s (limited=%t)", id, session.UserID, caps.LimitedOnly())

	settle(ctx, s.settleDelay)
	if caps.CanFullyEdit {
		s.notify(ctx, session, saved.AssignedTo.IDs, existing.AssignedTo.IDs, fmt.Sprintf("You have been assigned to task: %s", saved.Title))
	}
	return saved, nil
}

// Delete removes a task. Only its creator may do so.
func (s *TaskService) Delete(ctx context.Context, session models.Session, id models.ID) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !permissions.ForTask(session.UserID, existing).CanDelete {
		return fmt.Errorf("task %s: %w", id, ErrForbidden)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNoRecord) {
			return notConfirmed("task")
		}
		logging.Logger.Errorf("Event ID: TASK_DELETE_FAILED, Description: Task %s: %v", id, err)
		return err
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by %s", id, session.UserID)
	return nil
}

func (s *TaskService) notify(ctx context.Context, session models.Session, current, previous []string, message string) {
	if s.notifier == nil {
		return
	}
	if added := addedMembers(current, previous, string(session.UserID)); len(added) > 0 {
		s.notifier.NotifyAssigned(ctx, added, message)
	}
}

// addedMembers returns ids of current missing from previous, without self.
func addedMembers(current, previous []string, self string) []string {
	before := make(map[string]bool, len(previous))
	for _, id := range previous {
		before[id] = true
	}
	added := make([]string, 0)
	for _, id := range current {
		if id == self || before[id] {
			continue
		}
		before[id] = true
		added = append(added, id)
	}
	return added
}

// settle waits for the record store to make a write visible to reads.
func settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
