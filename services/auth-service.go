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

const FallbackRole = "User"

type AuthService struct {
	users       repositories.Collection[models.User]
	credentials repositories.Collection[models.Credential]
	sessions    *SessionStore
	tokens      *utils.TokenIssuer
	ttl         time.Duration
	now         func() time.Time
}

func NewAuthService(stores *repositories.Stores, sessions *SessionStore, tokens *utils.TokenIssuer, ttl time.Duration) *AuthService {
	return &AuthService{
		users:       stores.Users,
		credentials: stores.Credentials,
		sessions:    sessions,
		tokens:      tokens,
		ttl:         ttl,
		now:         time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn checks the credentials and opens a session. When the account has no
// profile row yet, the session carries a fallback profile built from the
// email.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return models.Session{}, invalidInput("email and password are required")
	}

	creds, err := s.credentials.List(ctx, repositories.Where("email", email))
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if len(creds) == 0 || !utils.CheckPassword(creds[0].PasswordHash, password) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Invalid credentials for %s", email)
		return models.Session{}, ErrInvalidCredentials
	}
	cred := creds[0]

	profile := s.loadProfile(ctx, cred)

	now := s.now().UTC()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		Profile:   profile,
	}
	session.Token, err = s.tokens.GenerateToken(session.ID, profile.ID, profile.Role, session.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.sessions.Put(session)
	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s signed in", profile.ID)
	return session, nil
}

func (s *AuthService) loadProfile(ctx context.Context, cred models.Credential) models.User {
	profiles, err := s.users.List(ctx, repositories.Where("auth_id", cred.ID))
	if err == nil && len(profiles) > 0 {
		return profiles[0]
	}
	if err != nil {
		logging.Logger.Warnf("Event ID: PROFILE_FETCH_FAILED, Description: Using fallback profile for %s: %v", cred.Email, err)
	} else {
		logging.Logger.Warnf("Event ID: PROFILE_MISSING, Description: No profile row for %s, using fallback", cred.Email)
	}
	return FallbackProfile(cred, s.now().UTC())
}

func FallbackProfile(cred models.Credential, now time.Time) models.User {
	name := cred.Email
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}
	return models.User{
		ID:        cred.ID,
		AuthID:    cred.ID,
		Name:      name,
		Email:     cred.Email,
		Role:      FallbackRole,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *AuthService) SignOut(sessionID string) {
	if s.sessions.Delete(sessionID) {
		logging.Logger.Infof("Event ID: LOGOUT_SUCCESS, Description: Session %s closed", sessionID)
	}
}

// Authenticate resolves a bearer token to its live session.
func (s *AuthService) Authenticate(token string) (models.Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return models.Session{}, ErrSessionExpired
	}
	return s.sessions.Get(claims.SessionID)
}

// RefreshProfile rereads the profile row of the session's user and updates
// every open session of that user.
func (s *AuthService) RefreshProfile(ctx context.Context, session models.Session) (models.User, error) {
	profile, err := s.users.Get(ctx, session.UserID)
	if errors.Is(err, repositories.ErrNoRecord) {
		return session.Profile, nil
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to refresh profile: %w", err)
	}
	s.sessions.UpdateProfile(*profile)
	return *profile, nil
}
