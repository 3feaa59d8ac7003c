package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"dashboard-project/backend/dashboard-service/models"
)

// MemoryCollection keeps rows as their JSON documents in insertion order, so
// filters and patches see the same column names as the REST store.
type MemoryCollection[T any] struct {
	mu   sync.RWMutex
	name string
	rows []map[string]any
}

func NewMemoryCollection[T any](name string) *MemoryCollection[T] {
	return &MemoryCollection[T]{name: name}
}

func toDocument(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument[T any](doc map[string]any) (*T, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func columnString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return fmt.Sprint(v)
}

func (c *MemoryCollection[T]) indexOf(id models.ID) int {
	for i, row := range c.rows {
		if columnString(row["id"]) == string(id) {
			return i
		}
	}
	return -1
}

func matches(row map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if columnString(row[f.Column]) != filterValue(f.Value) {
			return false
		}
	}
	return true
}

// less orders numbers numerically, timestamps chronologically and anything
// else as strings.
func less(a, b any) bool {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return x < y
		}
	}
	sa, sb := columnString(a), columnString(b)
	ta, errA := time.Parse(time.RFC3339Nano, sa)
	tb, errB := time.Parse(time.RFC3339Nano, sb)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return strings.Compare(sa, sb) < 0
}

func (c *MemoryCollection[T]) List(_ context.Context, opts ListOptions) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	selected := make([]map[string]any, 0, len(c.rows))
	for _, row := range c.rows {
		if matches(row, opts.Filters) {
			selected = append(selected, row)
		}
	}
	if opts.Order != nil {
		col, asc := opts.Order.Column, opts.Order.Ascending
		sort.SliceStable(selected, func(i, j int) bool {
			if asc {
				return less(selected[i][col], selected[j][col])
			}
			return less(selected[j][col], selected[i][col])
		})
	}

	records := make([]T, 0, len(selected))
	for _, row := range selected {
		record, err := fromDocument[T](row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", c.name, err)
		}
		records = append(records, *record)
	}
	return records, nil
}

func (c *MemoryCollection[T]) Get(_ context.Context, id models.ID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, ErrNoRecord
	}
	return fromDocument[T](c.rows[i])
}

func (c *MemoryCollection[T]) Insert(_ context.Context, record *T) (*T, error) {
	doc, err := toDocument(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := models.ID(columnString(doc["id"]))
	if id == "" {
		return nil, &BackendError{Status: http.StatusBadRequest, Code: "23502", Message: "null value in column \"id\""}
	}
	if c.indexOf(id) >= 0 {
		return nil, &BackendError{Status: http.StatusConflict, Code: "23505", Message: "duplicate key value violates unique constraint", Details: fmt.Sprintf("Key (id)=(%s) already exists.", id)}
	}
	c.rows = append(c.rows, doc)
	return fromDocument[T](doc)
}

func (c *MemoryCollection[T]) Update(_ context.Context, id models.ID, patch models.Patch) (*T, error) {
	changes, err := toDocument(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s patch: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	updated := make(map[string]any, len(c.rows[i]))
	for k, v := range c.rows[i] {
		updated[k] = v
	}
	for k, v := range changes {
		if k == "id" {
			continue
		}
		updated[k] = v
	}
	record, err := fromDocument[T](updated)
	if err != nil {
		return nil, &BackendError{Status: http.StatusBadRequest, Code: "22P02", Message: err.Error()}
	}
	c.rows[i] = updated
	return record, nil
}

func (c *MemoryCollection[T]) Delete(_ context.Context, id models.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return ErrNoRecord
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	return nil
}

func (c *MemoryCollection[T]) DeleteAll(_ context.Context) error {
	c.mu.Lock()
	c.rows = nil
	c.mu.Unlock()
	return nil
}

func OpenMemory() *Stores {
	return &Stores{
		Users:       NewMemoryCollection[models.User](UsersCollection),
		Credentials: NewMemoryCollection[models.Credential](CredentialsCollection),
		Tasks:       NewMemoryCollection[models.Task](TasksCollection),
		Projects:    NewMemoryCollection[models.Project](ProjectsCollection),
	}
}
