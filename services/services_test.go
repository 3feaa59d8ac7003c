package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/repositories"
	"dashboard-project/backend/dashboard-service/utils"
)

var adminRoles = []string{"Manager Technique", "Responsable Technique", "Responsable Marketing"}

type testEnv struct {
	stores   *repositories.Stores
	sessions *SessionStore
	notifier *recordingNotifier
	auth     *AuthService
	users    *UserService
	tasks    *TaskService
	projects *ProjectService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	stores := repositories.OpenMemory()
	sessions := NewSessionStore()
	notifier := &recordingNotifier{}
	return &testEnv{
		stores:   stores,
		sessions: sessions,
		notifier: notifier,
		auth:     NewAuthService(stores, sessions, utils.NewTokenIssuer("test-secret"), time.Hour),
		users:    NewUserService(stores, sessions, adminRoles),
		tasks:    NewTaskService(stores.Tasks, notifier, 0),
		projects: NewProjectService(stores.Projects, notifier, 0),
	}
}

func sessionFor(id models.ID, role string) models.Session {
	return models.Session{
		ID:        "s-" + string(id),
		UserID:    id,
		ExpiresAt: time.Now().Add(time.Hour),
		Profile:   models.User{ID: id, Role: role},
	}
}

// addAccount stores a credential and, when withProfile is set, its profile.
func (e *testEnv) addAccount(t *testing.T, id models.ID, email, password, role string, withProfile bool) {
	t.Helper()
	ctx := context.Background()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	credID := "auth-" + id
	if _, err := e.stores.Credentials.Insert(ctx, &models.Credential{ID: credID, UserID: id, Email: email, PasswordHash: hash}); err != nil {
		t.Fatal(err)
	}
	if !withProfile {
		return
	}
	user := &models.User{ID: id, AuthID: credID, Name: string(id), Email: email, Role: role, Department: "Technique", CreatedAt: time.Now().UTC()}
	if _, err := e.stores.Users.Insert(ctx, user); err != nil {
		t.Fatal(err)
	}
}

type notification struct {
	userIDs []string
	message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyAssigned(_ context.Context, userIDs []string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userIDs: append([]string{}, userIDs...), message: message})
}

func (n *recordingNotifier) last() (notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notification{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// policyCollection wraps a collection the way a row-level policy would:
// reads work, writes can be swallowed or rejected.
type policyCollection[T any] struct {
	repositories.Collection[T]
	hideWrites bool
	writeErr   error
	listErr    error
}

func (p *policyCollection[T]) List(ctx context.Context, opts repositories.ListOptions) ([]T, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.Collection.List(ctx, opts)
}

func (p *policyCollection[T]) Insert(ctx context.Context, record *T) (*T, error) {
	if p.writeErr != nil {
		return nil, p.writeErr
	}
	if p.hideWrites {
		return nil, nil
	}
	return p.Collection.Insert(ctx, record)
}

func (p *policyCollection[T]) Update(ctx context.Context, id models.ID, patch models.Patch) (*T, error) {
	if p.writeErr != nil {
		return nil, p.writeErr
	}
	if p.hideWrites {
		return nil, nil
	}
	return p.Collection.Update(ctx, id, patch)
}

func mustErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
