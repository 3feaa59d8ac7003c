package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"

	"github.com/sony/gobreaker"
)

// RESTClient talks to a hosted record store exposing tables over a
// PostgREST style API.
type RESTClient struct {
	baseURL    string
	apiKey     string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
}

func NewRESTClient(baseURL, apiKey string, breakerTimeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "RecordStoreCB",
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
			// Odbijanja (4xx) nisu kvar servera.
			IsSuccessful: func(err error) bool {
				var backendErr *BackendError
				if errors.As(err, &backendErr) {
					return backendErr.Status < http.StatusInternalServerError
				}
				return err == nil
			},
		}),
	}
}

func (c *RESTClient) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	_, err := c.Breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, method, table, query, body, out)
	})
	return err
}

func (c *RESTClient) send(ctx context.Context, method, table string, query url.Values, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", table, err)
		}
		payload = bytes.NewReader(data)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("record store request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read record store response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		backendErr := &BackendError{}
		if len(data) > 0 {
			_ = json.Unmarshal(data, backendErr)
		}
		backendErr.Status = resp.StatusCode
		if backendErr.Message == "" && backendErr.Details == "" && backendErr.Hint == "" {
			backendErr.Message = strings.TrimSpace(string(data))
		}
		return backendErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return nil
}

type RESTCollection[T any] struct {
	client *RESTClient
	table  string
}

func NewRESTCollection[T any](client *RESTClient, table string) *RESTCollection[T] {
	return &RESTCollection[T]{client: client, table: table}
}

func filterValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

func restQuery(opts ListOptions) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	for _, f := range opts.Filters {
		q.Add(f.Column, "eq."+filterValue(f.Value))
	}
	if opts.Order != nil {
		direction := "desc"
		if opts.Order.Ascending {
			direction = "asc"
		}
		q.Set("order", opts.Order.Column+"."+direction)
	}
	return q
}

func byID(id models.ID) url.Values {
	return url.Values{"id": {"eq." + string(id)}}
}

func (c *RESTCollection[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	records := make([]T, 0)
	if err := c.client.do(ctx, http.MethodGet, c.table, restQuery(opts), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *RESTCollection[T]) Get(ctx context.Context, id models.ID) (*T, error) {
	records, err := c.List(ctx, Where("id", id))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecord
	}
	return &records[0], nil
}

func (c *RESTCollection[T]) Insert(ctx context.Context, record *T) (*T, error) {
	var rows []T
	if err := c.client.do(ctx, http.MethodPost, c.table, nil, record, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *RESTCollection[T]) Update(ctx context.Context, id models.ID, patch models.Patch) (*T, error) {
	var rows []T
	if err := c.client.do(ctx, http.MethodPatch, c.table, byID(id), patch, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *RESTCollection[T]) Delete(ctx context.Context, id models.ID) error {
	var rows []T
	if err := c.client.do(ctx, http.MethodDelete, c.table, byID(id), nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNoRecord
	}
	return nil
}

func (c *RESTCollection[T]) DeleteAll(ctx context.Context) error {
	return c.client.do(ctx, http.MethodDelete, c.table, url.Values{"id": {"not.is.null"}}, nil, nil)
}

func OpenREST(baseURL, apiKey string, breakerTimeout time.Duration) *Stores {
	client := NewRESTClient(baseURL, apiKey, breakerTimeout)
	return &Stores{
		Users:       NewRESTCollection[models.User](client, UsersCollection),
		Credentials: NewRESTCollection[models.Credential](client, CredentialsCollection),
		Tasks:       NewRESTCollection[models.Task](client, TasksCollection),
		Projects:    NewRESTCollection[models.Project](client, ProjectsCollection),
	}
}
