package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/limbo/studytrack/internal/service"
)

const defaultRequestTimeout = 10 * time.Second

type Server struct {
	mx                *chi.Mux
	mu                sync.Mutex
	httpServer        *http.Server
	userService       service.UserServiceI
	checkInService    service.CheckInServiceI
	taskService       service.TaskServiceI
	generationService service.GenerationServiceI
	jwtService        JWTServiceI
	requestTimeout    time.Duration
	location          *time.Location
}

type ServicesList struct {
	UserService       service.UserServiceI
	CheckInService    service.CheckInServiceI
	TaskService       service.TaskServiceI
	GenerationService service.GenerationServiceI
	JwtService        JWTServiceI
	// Bounds every service call made by a handler. Defaults to 10s.
	RequestTimeout time.Duration
	// Location of bare dates in query params. Defaults to time.Local.
	Location *time.Location
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:                chi.NewMux(),
		userService:       servicesOptions.UserService,
		checkInService:    servicesOptions.CheckInService,
		taskService:       servicesOptions.TaskService,
		generationService: servicesOptions.GenerationService,
		jwtService:        servicesOptions.JwtService,
		requestTimeout:    servicesOptions.RequestTimeout,
		location:          servicesOptions.Location,
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	if s.location == nil {
		s.location = time.Local
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(middleware.Recoverer, s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)

			r.Get("/users/me", s.GetProfile)
			r.Patch("/users/me", s.UpdateProfile)
			r.Delete("/users/me", s.DeleteAccount)
			r.Get("/users/me/stats", s.GetUserStats)
			r.Get("/exam/countdown", s.GetExamCountdown)

			r.Post("/checkins", s.CreateCheckIn)
			r.Get("/checkins", s.GetCheckIns)
			r.Get("/checkins/today", s.GetTodayCheckIns)
			r.Get("/checkins/status", s.GetDailyStatus)
			r.Get("/checkins/stats", s.GetCheckInStats)

			r.Get("/tasks", s.GetTasks)
			r.Post("/tasks", s.CreateTask)
			r.Post("/tasks/generate", s.GenerateTasks)
			r.Get("/tasks/stats", s.GetTaskStats)
			r.Get("/tasks/{id}", s.GetTask)
			r.Put("/tasks/{id}", s.UpdateTask)
			r.Patch("/tasks/{id}/status", s.UpdateTaskStatus)
			r.Delete("/tasks/{id}", s.DeleteTask)
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mx.ServeHTTP(w, r)
}

// Run blocks until the server stops. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}
