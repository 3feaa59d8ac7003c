package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-project/backend/dashboard-service/config"
	"dashboard-project/backend/dashboard-service/handlers"
	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/repositories"
	"dashboard-project/backend/dashboard-service/services"
	"dashboard-project/backend/dashboard-service/utils"

	"github.com/spf13/cobra"
)

const sessionPurgeInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

type application struct {
	stores        *repositories.Stores
	notifications *repositories.NotificationRepo
	services      handlers.Services
	sessions      *services.SessionStore
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	stores, err := repositories.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &application{stores: stores, sessions: services.NewSessionStore()}

	// Bez CASS_DB servis radi bez notifikacija.
	var notificationStore services.NotificationStore
	if cfg.NotificationsEnabled() {
		repo, err := repositories.NewNotificationRepo(cfg.CassandraHosts)
		if err != nil {
			logging.Logger.Warnf("Event ID: NOTIFICATIONS_DISABLED, Description: Cassandra unavailable, notifications are off: %v", err)
		} else if err := repo.CreateTable(); err != nil {
			logging.Logger.Warnf("Event ID: NOTIFICATIONS_DISABLED, Description: Failed to create notifications table: %v", err)
			repo.CloseSession()
		} else {
			app.notifications = repo
			notificationStore = repo
		}
	}
	notifier := services.NewNotificationService(notificationStore, cfg.BreakerTimeout)

	users := services.NewUserService(stores, app.sessions, cfg.AdminRoles)
	if cfg.PasswordBlackListFile != "" {
		blackList, err := utils.LoadBlackList(cfg.PasswordBlackListFile)
		if err != nil {
			logging.Logger.Warnf("Event ID: BLACKLIST_LOAD_FAILED, Description: %v", err)
		} else {
			users.SetBlackList(blackList)
			logging.Logger.Infof("Event ID: BLACKLIST_LOADED, Description: %d blacklisted passwords", len(blackList))
		}
	}
	tasks := services.NewTaskService(stores.Tasks, notifier, cfg.WriteSettleDelay)
	projects := services.NewProjectService(stores.Projects, notifier, cfg.WriteSettleDelay)

	app.services = handlers.Services{
		Auth:          services.NewAuthService(stores, app.sessions, utils.NewTokenIssuer(cfg.JWTSecret), cfg.SessionTTL),
		Users:         users,
		Tasks:         tasks,
		Projects:      projects,
		Reports:       services.NewReportService(users, tasks, projects),
		Notifications: notifier,
	}
	return app, nil
}

func (a *application) close(ctx context.Context) {
	if a.notifications != nil {
		a.notifications.CloseSession()
	}
	if err := a.stores.Close(ctx); err != nil {
		logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
	}
}

func (a *application) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.sessions.PurgeExpired(); n > 0 {
				logging.Logger.Infof("Event ID: SESSIONS_PURGED, Description: %d expired sessions removed", n)
			}
		}
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Dashboard Service...")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close(context.Background())

	go app.purgeSessions(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      handlers.NewRouter(app.services, cfg.CORSOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Logger.Errorf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
