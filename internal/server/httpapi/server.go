// Package httpapi exposes the auth core and the guarded record handlers over
// HTTP/JSON. It maps guard outcomes to status codes (401 authentication,
// 403 authorization) and owns no business logic of its own.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mpetrenko/hrauth/internal/logging"
	"github.com/mpetrenko/hrauth/internal/server/auth/token"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

// principalSvc is the slice of PrincipalService the handlers use.
type principalSvc interface {
	Register(ctx context.Context, login, email, rawPassword string, role models.Role) (string, error)
	Login(ctx context.Context, login, rawPassword string) (string, *token.Claims, error)
	ChangePassword(ctx context.Context, principalID, oldRawPassword, newRawPassword string) error
	VerifyToken(ctx context.Context, tokenString string) (*token.Claims, error)
	Logout(ctx context.Context, claims *token.Claims) error
}

// employeeSvc is the slice of EmployeeService the handlers use.
type employeeSvc interface {
	Create(ctx context.Context, e *models.Employee) (*models.Employee, error)
	Get(ctx context.Context, id int64) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
}

// Server serves the HTTP API.
type Server struct {
	address    string
	logger     logging.Logger
	principals principalSvc
	employees  employeeSvc
}

func NewServer(address string, l logging.Logger, ps principalSvc, es employeeSvc) *Server {
	return &Server{
		address:    address,
		logger:     l.With("module", "http_server"),
		principals: ps,
		employees:  es,
	}
}

// Router builds the full route table. Protected routes are wrapped in the
// access guard explicitly, so the authorization check is a visible step in
// the chain rather than an annotation.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequest)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.Handle("/auth/logout", s.Guard(http.HandlerFunc(s.handleLogout))).Methods(http.MethodPost)
	api.Handle("/auth/password", s.Guard(http.HandlerFunc(s.handleChangePassword))).Methods(http.MethodPost)

	api.Handle("/employees", s.Guard(http.HandlerFunc(s.handleListEmployees))).Methods(http.MethodGet)
	api.Handle("/employees/{id:[0-9]+}", s.Guard(http.HandlerFunc(s.handleGetEmployee))).Methods(http.MethodGet)
	api.Handle("/employees", s.GuardRole(models.RoleAdministrator, http.HandlerFunc(s.handleCreateEmployee))).Methods(http.MethodPost)
	api.Handle("/employees/{id:[0-9]+}", s.GuardRole(models.RoleAdministrator, http.HandlerFunc(s.handleUpdateEmployee))).Methods(http.MethodPut)

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
