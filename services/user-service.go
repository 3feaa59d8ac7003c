package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/repositories"
	"dashboard-project/backend/dashboard-service/utils"

	"github.com/google/uuid"
)

// ProfileInput is the self-service profile form. An empty password leaves
// the password unchanged.
type ProfileInput struct {
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Avatar     *string `json:"avatar"`
	Password   string  `json:"password"`
}

// UserInput is the admin form for creating or editing a team member.
type UserInput struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Avatar     *string `json:"avatar"`
	Password   string  `json:"password"`
}

type UserService struct {
	users       repositories.Collection[models.User]
	credentials repositories.Collection[models.Credential]
	sessions    *SessionStore
	adminRoles  map[string]bool
	blackList   map[string]bool
	now         func() time.Time
}

func NewUserService(stores *repositories.Stores, sessions *SessionStore, adminRoles []string) *UserService {
	roles := make(map[string]bool, len(adminRoles))
	for _, r := range adminRoles {
		roles[r] = true
	}
	return &UserService{
		users:       stores.Users,
		credentials: stores.Credentials,
		sessions:    sessions,
		adminRoles:  roles,
		blackList:   map[string]bool{},
		now:         time.Now,
	}
}

// SetBlackList replaces the set of passwords refused on create and change.
func (s *UserService) SetBlackList(blackList map[string]bool) {
	if blackList == nil {
		blackList = map[string]bool{}
	}
	s.blackList = blackList
}

func (s *UserService) IsAdmin(role string) bool {
	return s.adminRoles[role]
}

// List returns the team, newest first. A failed read yields an empty list.
func (s *UserService) List(ctx context.Context) []models.User {
	users, err := s.users.List(ctx, repositories.ListOptions{}.OrderBy("created_at", false))
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_LIST_FAILED, Description: Failed to fetch users: %v", err)
		return []models.User{}
	}
	return users
}

func (s *UserService) checkPassword(password string) error {
	if err := utils.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.blackList[password] {
		return invalidInput("password is too common")
	}
	return nil
}

func (s *UserService) setPassword(ctx context.Context, credentialID models.ID, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	updated, err := s.credentials.Update(ctx, credentialID, models.Patch{"password_hash": hash})
	if err != nil {
		return err
	}
	if updated == nil {
		return notConfirmed("account")
	}
	return nil
}

// UpdateProfile saves the session user's own profile and, when given, a new
// password.
func (s *UserService) UpdateProfile(ctx context.Context, session models.Session, in ProfileInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalidInput("name is required")
	}
	if in.Password != "" {
		if err := s.checkPassword(in.Password); err != nil {
			return nil, err
		}
	}

	in.Role = strings.TrimSpace(in.Role)
	if in.Role != "" && in.Role != session.Profile.Role && !s.IsAdmin(session.Profile.Role) {
		return nil, fmt.Errorf("profile role: %w", ErrForbidden)
	}

	patch := models.Patch{
		"name":       in.Name,
		"department": in.Department,
		"avatar":     blankToNil(in.Avatar),
		"updated_at": s.now().UTC(),
	}
	// Prazna uloga ostavlja sacuvanu.
	if in.Role != "" {
		patch["role"] = in.Role
	}
	saved, err := s.users.Update(ctx, session.UserID, patch)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROFILE_UPDATE_FAILED, Description: User %s: %v", session.UserID, err)
		return nil, err
	}
	if saved == nil {
		return nil, notConfirmed("profile")
	}

	if in.Password != "" {
		credentialID := session.Profile.AuthID
		if credentialID == "" {
			credentialID = saved.AuthID
		}
		if err := s.setPassword(ctx, credentialID, in.Password); err != nil {
			logging.Logger.Errorf("Event ID: PASSWORD_UPDATE_FAILED, Description: User %s: %v", session.UserID, err)
			return nil, err
		}
	}

	s.sessions.UpdateProfile(*saved)
	logging.Logger.Infof("Event ID: PROFILE_UPDATED, Description: User %s updated their profile", session.UserID)
	return saved, nil
}

func (s *UserService) requireAdmin(session models.Session) error {
	if !s.IsAdmin(session.Profile.Role) {
		return fmt.Errorf("user management: %w", ErrForbidden)
	}
	return nil
}

func (in *UserInput) normalize() {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.Department = strings.TrimSpace(in.Department)
	in.Avatar = blankToNil(in.Avatar)
}

// CreateUser opens an account and its profile row. Admin only.
func (s *UserService) CreateUser(ctx context.Context, session models.Session, in UserInput) (*models.User, error) {
	if err := s.requireAdmin(session); err != nil {
		return nil, err
	}
	in.normalize()
	if in.Email == "" || in.Name == "" || in.Role == "" || in.Department == "" || in.Password == "" {
		return nil, invalidInput("email, name, role, department and password are required")
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.credentials.List(ctx, repositories.Where("email", in.Email))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, invalidInput("email %s is already registered", in.Email)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:         models.ID(uuid.NewString()),
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
		Avatar:     in.Avatar,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cred := &models.Credential{
		ID:           models.ID(uuid.NewString()),
		UserID:       user.ID,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	user.AuthID = cred.ID

	if _, err := s.credentials.Insert(ctx, cred); err != nil {
		logging.Logger.Errorf("Event ID: ACCOUNT_CREATE_FAILED, Description: %s: %v", in.Email, err)
		return nil, err
	}
	saved, err := s.users.Insert(ctx, user)
	if err == nil && saved == nil {
		err = notConfirmed("user")
	}
	if err != nil {
		// Nalog bez profila se brise da bi email ostao slobodan.
		if delErr := s.credentials.Delete(ctx, cred.ID); delErr != nil {
			logging.Logger.Errorf("Event ID: ACCOUNT_ROLLBACK_FAILED, Description: %s: %v", in.Email, delErr)
		}
		logging.Logger.Errorf("Event ID: USER_CREATE_FAILED, Description: %s: %v", in.Email, err)
		return nil, err
	}

	logging.Logger.Infof("Event ID: USER_CREATED, Description: User %s created by %s", saved.ID, session.UserID)
	return saved, nil
}

// UpdateUser edits another member's profile. Admin only; the email is not
// changed.
func (s *UserService) UpdateUser(ctx context.Context, session models.Session, id models.ID, in UserInput) (*models.User, error) {
	if err := s.requireAdmin(session); err != nil {
		return nil, err
	}
	in.normalize()
	if in.Name == "" || in.Role == "" || in.Department == "" {
		return nil, invalidInput("name, role and department are required")
	}
	if in.Password != "" {
		if err := s.checkPassword(in.Password); err != nil {
			return nil, err
		}
	}

	saved, err := s.users.Update(ctx, id, models.Patch{
		"name":       in.Name,
		"role":       in.Role,
		"department": in.Department,
		"avatar":     in.Avatar,
		"updated_at": s.now().UTC(),
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_UPDATE_FAILED, Description: User %s: %v", id, err)
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if in.Password != "" && saved.AuthID != "" {
		if err := s.setPassword(ctx, saved.AuthID, in.Password); err != nil {
			return nil, err
		}
	}

	s.sessions.UpdateProfile(*saved)
	logging.Logger.Infof("Event ID: USER_UPDATED, Description: User %s updated by %s", id, session.UserID)
	return saved, nil
}

// DeleteUser removes a member's account and profile. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, session models.Session, id models.ID) error {
	if err := s.requireAdmin(session); err != nil {
		return err
	}
	if id == session.UserID {
		return invalidInput("you cannot delete your own account")
	}

	user, err := s.users.Get(ctx, id)
	if errors.Is(err, repositories.ErrNoRecord) {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}

	if user.AuthID != "" {
		if err := s.credentials.Delete(ctx, user.AuthID); err != nil && !errors.Is(err, repositories.ErrNoRecord) {
			logging.Logger.Errorf("Event ID: ACCOUNT_DELETE_FAILED, Description: User %s: %v", id, err)
			return err
		}
	}
	if err := s.users.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrNoRecord) {
		logging.Logger.Errorf("Event ID: USER_DELETE_FAILED, Description: User %s: %v", id, err)
		return err
	}

	s.sessions.RevokeUser(id)
	logging.Logger.Infof("Event ID: USER_DELETED, Description: User %s deleted by %s", id, session.UserID)
	return nil
}
