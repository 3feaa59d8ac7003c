package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dashboard-project/backend/dashboard-service/models"
)

// Collection names shared by every store driver.
const (
	UsersCollection       = "users"
	CredentialsCollection = "credentials"
	TasksCollection       = "tasks"
	ProjectsCollection    = "projects"
)

var ErrNoRecord = errors.New("record not found")

// Filter is an equality match on one column.
type Filter struct {
	Column string
	Value  any
}

type Order struct {
	Column    string
	Ascending bool
}

type ListOptions struct {
	Filters []Filter
	Order   *Order
}

func Where(column string, value any) ListOptions {
	return ListOptions{Filters: []Filter{{Column: column, Value: value}}}
}

func (o ListOptions) OrderBy(column string, ascending bool) ListOptions {
	o.Order = &Order{Column: column, Ascending: ascending}
	return o
}

// Collection is CRUD over one record collection. Update and Insert return the
// affected row as confirmed by the store; a nil row with a nil error means the
// store accepted the call but matched nothing the caller may see.
type Collection[T any] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id models.ID) (*T, error)
	Insert(ctx context.Context, record *T) (*T, error)
	Update(ctx context.Context, id models.ID, patch models.Patch) (*T, error)
	Delete(ctx context.Context, id models.ID) error
	DeleteAll(ctx context.Context) error
}

// BackendError is a rejection reported by the record store.
type BackendError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *BackendError) Error() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Message, e.Details, e.Hint} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("backend error (status %d, code %q)", e.Status, e.Code)
	}
	return strings.Join(parts, ": ")
}

// Stores groups the collections the service works with.
type Stores struct {
	Users       Collection[models.User]
	Credentials Collection[models.Credential]
	Tasks       Collection[models.Task]
	Projects    Collection[models.Project]

	close func(context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
