package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/permissions"
	"dashboard-project/backend/dashboard-service/repositories"

	"github.com/google/uuid"
)

type ProjectInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Progress    *int                 `json:"progress"`
	StartDate   *string              `json:"start_date"`
	EndDate     *string              `json:"end_date"`
	TeamMembers models.MemberSet     `json:"team_members"`
}

type ProjectService struct {
	projects    repositories.Collection[models.Project]
	notifier    Notifier
	settleDelay time.Duration
	now         func() time.Time
}

func NewProjectService(projects repositories.Collection[models.Project], notifier Notifier, settleDelay time.Duration) *ProjectService {
	return &ProjectService{
		projects:    projects,
		notifier:    notifier,
		settleDelay: settleDelay,
		now:         time.Now,
	}
}

// List returns all projects, newest first. A failed read is logged and
// yields an empty list.
func (s *ProjectService) List(ctx context.Context) []models.Project {
	projects, err := s.projects.List(ctx, repositories.ListOptions{}.OrderBy("created_at", false))
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_LIST_FAILED, Description: Failed to fetch projects: %v", err)
		return []models.Project{}
	}
	return projects
}

func (s *ProjectService) Get(ctx context.Context, id models.ID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if errors.Is(err, repositories.ErrNoRecord) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return project, err
}

func (s *ProjectService) Capabilities(ctx context.Context, session models.Session, id models.ID) (permissions.Capabilities, error) {
	if id == "" {
		return permissions.ForProject(session.UserID, nil), nil
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return permissions.Capabilities{}, err
	}
	return permissions.ForProject(session.UserID, project), nil
}

// validateLimited proverava status i progres, ako je poslat.
func (in *ProjectInput) validateLimited() error {
	if !in.Status.Valid() {
		return invalidInput("unknown project status %q", in.Status)
	}
	if in.Progress != nil && (*in.Progress < 0 || *in.Progress > 100) {
		return invalidInput("progress must be between 0 and 100, got %d", *in.Progress)
	}
	return nil
}

func (in *ProjectInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = models.ProjectPlanning
	}
	if err := in.validateLimited(); err != nil {
		return err
	}
	if in.Progress == nil {
		zero := 0
		in.Progress = &zero
	}
	if in.TeamMembers.Malformed {
		return invalidInput("team_members is not a list of user ids")
	}
	if in.TeamMembers.IDs == nil {
		in.TeamMembers = models.Members()
	}
	in.StartDate = blankToNil(in.StartDate)
	in.EndDate = blankToNil(in.EndDate)
	return nil
}

func (in ProjectInput) patch(now time.Time) models.Patch {
	return models.Patch{
		"name":         in.Name,
		"description":  in.Description,
		"status":       in.Status,
		"progress":     *in.Progress,
		"start_date":   in.StartDate,
		"end_date":     in.EndDate,
		"team_members": in.TeamMembers,
		"updated_at":   now,
	}
}

// Save creates a project when id is empty, otherwise updates it. Team members
// who did not create the project may change only status and progress.
func (s *ProjectService) Save(ctx context.Context, session models.Session, id models.ID, in ProjectInput) (*models.Project, error) {
	if session.UserID == "" {
		return nil, ErrSessionExpired
	}
	if id == "" {
		return s.create(ctx, session, in)
	}
	return s.update(ctx, session, id, in)
}

func (s *ProjectService) create(ctx context.Context, session models.Session, in ProjectInput) (*models.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, invalidInput("name is required")
	}
	now := s.now().UTC()
	project := &models.Project{
		ID:          models.ID(uuid.NewString()),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Progress:    *in.Progress,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		TeamMembers: in.TeamMembers,
		CreatedBy:   session.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	saved, err := s.projects.Insert(ctx, project)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CREATE_FAILED, Description: %v", err)
		return nil, err
	}
	if saved == nil {
		return nil, notConfirmed("project")
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", saved.ID, session.UserID)

	settle(ctx, s.settleDelay)
	s.notify(ctx, session, saved.TeamMembers.IDs, nil, fmt.Sprintf("You have been added to project: %s", saved.Name))
	return saved, nil
}

func (s *ProjectService) update(ctx context.Context, session models.Session, id models.ID, in ProjectInput) (*models.Project, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	caps := permissions.ForProject(session.UserID, existing)
	if !caps.CanMutate() {
		return nil, fmt.Errorf("project %s: %w", id, ErrForbidden)
	}
	if in.Status == "" {
		in.Status = existing.Status
	}
	supplied := in.Progress != nil
	if caps.LimitedOnly() {
		if err := in.validateLimited(); err != nil {
			return nil, err
		}
	} else {
		if err := in.normalize(); err != nil {
			return nil, err
		}
		if in.Name == "" {
			return nil, invalidInput("name is required")
		}
	}
	// Izostavljen progres zadrzava sacuvanu vrednost.
	if !supplied {
		progress := existing.Progress
		in.Progress = &progress
	}

	patch, err := permissions.ScopePatch(caps, in.patch(s.now().UTC()), permissions.ProjectLimitedFields, "updated_at")
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, ErrForbidden)
	}

	saved, err := s.projects.Update(ctx, id, patch)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_UPDATE_FAILED, Description: Project %s: %v", id, err)
		return nil, err
	}
	if saved == nil {
		logging.Logger.Warnf("Event ID: PROJECT_UPDATE_UNCONFIRMED, Description: Update of project %s returned no row", id)
		return nil, notConfirmed("project")
	}
	logging.Logger.Infof("Event ID: PROJECT_UPDATED, Description: Project %s updated by %s (limited=%t)", id, session.UserID, caps.LimitedOnly())

	settle(ctx, s.settleDelay)
	if caps.CanFullyEdit {
		s.notify(ctx, session, saved.TeamMembers.IDs, existing.TeamMembers.IDs, fmt.Sprintf("You have been added to project: %s", saved.Name))
	}
	return saved, nil
}

func (s *ProjectService) Delete(ctx context.Context, session models.Session, id models.ID) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !permissions.ForProject(session.UserID, existing).CanDelete {
		return fmt.Errorf("project %s: %w", id, ErrForbidden)
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNoRecord) {
			return notConfirmed("project")
		}
		logging.Logger.Errorf("Event ID: PROJECT_DELETE_FAILED, Description: Project %s: %v", id, err)
		return err
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted by %s", id, session.UserID)
	return nil
}

func (s *ProjectService) notify(ctx context.Context, session models.Session, current, previous []string, message string) {
	if s.notifier == nil {
		return
	}
	if added := addedMembers(current, previous, string(session.UserID)); len(added) > 0 {
		s.notifier.NotifyAssigned(ctx, added, message)
	}
}
