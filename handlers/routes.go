package handlers

import (
	"net/http"

	"dashboard-project/backend/dashboard-service/middleware"
	"dashboard-project/backend/dashboard-service/services"

	"github.com/gorilla/mux"
)

type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Tasks         *services.TaskService
	Projects      *services.ProjectService
	Reports       *services.ReportService
	Notifications *services.NotificationService
}

// NewRouter wires every route. Everything under /api except login needs a
// bearer token.
func NewRouter(s Services, corsOrigin string) http.Handler {
	loginHandler := &LoginHandler{Auth: s.Auth}
	userHandler := &UserHandler{UserService: s.Users}
	taskHandler := NewTaskHandler(s.Tasks)
	projectHandler := NewProjectHandler(s.Projects)
	reportHandler := NewReportHandler(s.Reports)
	notificationHandler := NewNotificationHandler(s.Notifications)

	r := mux.NewRouter()
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", loginHandler.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware(s.Auth))

	api.HandleFunc("/auth/logout", loginHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", loginHandler.Me).Methods(http.MethodGet)

	api.HandleFunc("/tasks", taskHandler.GetAllTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/permissions", taskHandler.GetPermissions).Methods(http.MethodGet)

	api.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id}/permissions", projectHandler.GetPermissions).Methods(http.MethodGet)

	api.HandleFunc("/users", userHandler.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/me", userHandler.UpdateProfile).Methods(http.MethodPut)
	api.Handle("/users", middleware.RequireAdmin(s.Users, http.HandlerFunc(userHandler.CreateUser))).Methods(http.MethodPost)
	api.Handle("/users/{id}", middleware.RequireAdmin(s.Users, http.HandlerFunc(userHandler.UpdateUser))).Methods(http.MethodPut)
	api.Handle("/users/{id}", middleware.RequireAdmin(s.Users, http.HandlerFunc(userHandler.DeleteUser))).Methods(http.MethodDelete)

	api.HandleFunc("/reports", reportHandler.GetReport).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", reportHandler.GetDashboard).Methods(http.MethodGet)

	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods(http.MethodPut)

	return middleware.EnableCORS(corsOrigin)(r)
}
