package repositories

import (
	"context"
	"fmt"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"

	"github.com/gocql/gocql"
)

const notificationsKeyspace = "dashboard_notifications"

type NotificationRepo struct {
	session *gocql.Session
}

// NewNotificationRepo connects to Cassandra and creates the keyspace when it
// does not exist yet.
func NewNotificationRepo(hosts []string) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Timeout = 5 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra connect: %w", err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS ` + notificationsKeyspace + `
		 WITH replication = {
			 'class': 'SimpleStrategy',
			 'replication_factor': 1
		 }`).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyspace: %w", err)
	}

	cluster.Keyspace = notificationsKeyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s keyspace: %w", notificationsKeyspace, err)
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra keyspace %s.", notificationsKeyspace)
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed.")
}

// Notifikacije jednog korisnika su u jednoj particiji, najnovije prve.
func (nr *NotificationRepo) CreateTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			user_id TEXT,
			id TIMEUUID,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), id)
		) WITH CLUSTERING ORDER BY (id DESC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	id := gocql.TimeUUID()
	if n.ID != "" {
		parsed, err := gocql.ParseUUID(n.ID)
		if err != nil {
			return fmt.Errorf("invalid notification id %q: %w", n.ID, err)
		}
		id = parsed
	}
	n.ID = id.String()

	err := nr.session.Query(
		`INSERT INTO notifications (user_id, id, message, created_at, is_read) VALUES (?, ?, ?, ?, ?)`,
		n.UserID, id, n.Message, n.CreatedAt, n.IsRead,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	iter := nr.session.Query(
		`SELECT id, user_id, message, created_at, is_read FROM notifications WHERE user_id = ?`,
		userID,
	).WithContext(ctx).Iter()

	notifications := make([]models.Notification, 0)
	var (
		id gocql.UUID
		n  models.Notification
	)
	for iter.Scan(&id, &n.UserID, &n.Message, &n.CreatedAt, &n.IsRead) {
		n.ID = id.String()
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (nr *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id %q: %w", notificationID, ErrNoRecord)
	}
	// Cassandra UPDATE je upsert; bez provere bi nastao prazan red.
	var existing gocql.UUID
	if err := nr.session.Query(
		`SELECT id FROM notifications WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Scan(&existing); err != nil {
		if err == gocql.ErrNotFound {
			return ErrNoRecord
		}
		return fmt.Errorf("failed to load notification: %w", err)
	}

	err = nr.session.Query(
		`UPDATE notifications SET is_read = true WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}
