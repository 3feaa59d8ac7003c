package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/repositories"

	"github.com/sony/gobreaker"
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// NotificationService sends best-effort assignment notices. With a nil store
// it is disabled: sends are dropped and lists are empty.
type NotificationService struct {
	store   NotificationStore
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewNotificationService(store NotificationStore, breakerTimeout time.Duration) *NotificationService {
	return &NotificationService{
		store: store,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "notifications-cb",
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			// Nepostojece obavestenje nije kvar baze.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, repositories.ErrNoRecord)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' state changed from %s to %s", name, from.String(), to.String())
			},
		}),
		now: time.Now,
	}
}

func (s *NotificationService) Enabled() bool {
	return s != nil && s.store != nil
}

// NotifyAssigned writes one notification per user. Failures are logged and
// never reach the caller.
func (s *NotificationService) NotifyAssigned(ctx context.Context, userIDs []string, message string) {
	if !s.Enabled() {
		return
	}
	for _, userID := range userIDs {
		n := &models.Notification{
			UserID:    userID,
			Message:   message,
			CreatedAt: s.now().UTC(),
		}
		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.store.Create(ctx, n)
		})
		if err != nil {
			logging.Logger.Warnf("Event ID: NOTIFICATION_SEND_FAILED, Description: Notification for %s dropped: %v", userID, err)
			continue
		}
		logging.Logger.Infof("Event ID: NOTIFICATION_SENT, Description: Notification %s sent to %s", n.ID, userID)
	}
}

func (s *NotificationService) List(ctx context.Context, session models.Session) ([]models.Notification, error) {
	if !s.Enabled() {
		return []models.Notification{}, nil
	}
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ListByUser(ctx, string(session.UserID))
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_LIST_FAILED, Description: User %s: %v", session.UserID, err)
		return []models.Notification{}, nil
	}
	return result.([]models.Notification), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, session models.Session, id string) error {
	if !s.Enabled() {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.MarkRead(ctx, string(session.UserID), id)
	})
	if errors.Is(err, repositories.ErrNoRecord) {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification %s: %w", id, err)
	}
	return nil
}
