package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/infra/observability"
	"github.com/boddenberg/crm-api-go/internal/infra/resilience"
	"github.com/boddenberg/crm-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth           *service.AuthService
	Users          *service.UserService
	Leads          *service.LeadService
	WorkItems      *service.WorkItemService
	Tasks          *service.TaskService
	Communications *service.CommunicationService
	Lookups        *service.LookupService
	Health         *service.HealthService
}

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	AdminRoles     []string
	MaxConcurrency int
	DevMode        bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, cfg RouterConfig, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	b := &boundary{logger: logger, metrics: metrics, devMode: cfg.DevMode}
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/"
	}

	r.Route(prefix, func(r chi.Router) {
		// =============================================
		// Health (public, outside the bulkhead)
		// =============================================
		r.Get("/health", healthHandler(svc.Health))
		r.Get("/health/ready", readyHandler(svc.Health))
		r.Get("/health/live", liveHandler(svc.Health))

		r.Group(func(r chi.Router) {
			r.Use(bulkheadMiddleware(resilience.NewBulkhead(cfg.MaxConcurrency), b))

			// =============================================
			// Public
			// =============================================
			r.Post("/auth/signup", signupHandler(svc.Auth, b))
			r.Post("/auth/login", loginHandler(svc.Auth, b))
			r.Get("/roles", listRolesHandler(svc.Lookups, b))

			// =============================================
			// Protected
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(jwtAuthMiddleware(svc.Auth, b))
				adminOnly := adminGate(b, cfg.AdminRoles)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", listUsersHandler(svc.Users, b))
					r.Get("/me", meHandler(svc.Users, b))
					r.Get("/assignable", assignableUsersHandler(svc.Users, b))
					r.Get("/{id}", getUserHandler(svc.Users, b))
					r.With(adminOnly).Post("/", createUserHandler(svc.Users, b))
					r.Put("/{id}", updateUserHandler(svc.Users, b))
					r.With(adminOnly).Delete("/{id}", deleteUserHandler(svc.Users, b))
				})

				r.Get("/roles/{id}", getRoleHandler(svc.Lookups, b))
				r.Get("/lead-statuses", listLeadStatusesHandler(svc.Lookups, b))
				r.Get("/lead-statuses/{id}", getLeadStatusHandler(svc.Lookups, b))
				r.Get("/sources", listSourcesHandler(svc.Lookups, b))
				r.Get("/sources/{id}", getSourceHandler(svc.Lookups, b))
				r.Get("/work-statuses", listWorkStatusesHandler(svc.Lookups, b))

				r.Route("/leads", func(r chi.Router) {
					r.Get("/", listLeadsHandler(svc.Leads, b))
					r.Get("/status/{statusId}", listLeadsByStatusHandler(svc.Leads, b))
					r.Get("/{id}", getLeadHandler(svc.Leads, b))
					r.Post("/", createLeadHandler(svc.Leads, b))
					r.Put("/{id}", updateLeadHandler(svc.Leads, b))
					r.Delete("/{id}", deleteLeadHandler(svc.Leads, b))
					r.Post("/{id}/convert", convertLeadHandler(svc.Leads, b))
				})

				r.Route("/work-items", func(r chi.Router) {
					r.Get("/", listWorkItemsHandler(svc.WorkItems, b))
					r.Post("/filter", filterWorkItemsHandler(svc.WorkItems, b))
					r.Get("/{id}", getWorkItemHandler(svc.WorkItems, b))
					r.Post("/", createWorkItemHandler(svc.WorkItems, b))
					r.Put("/{id}", updateWorkItemHandler(svc.WorkItems, b))
					r.Delete("/{id}", deleteWorkItemHandler(svc.WorkItems, b))
				})

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", listTasksHandler(svc.Tasks, b))
					r.Post("/filter", filterTasksHandler(svc.Tasks, b))
					r.Get("/{id}", getTaskHandler(svc.Tasks, b))
					r.Post("/", createTaskHandler(svc.Tasks, b))
					r.Put("/{id}", updateTaskHandler(svc.Tasks, b))
					r.Delete("/{id}", deleteTaskHandler(svc.Tasks, b))
				})

				r.Route("/communications", func(r chi.Router) {
					r.Get("/", listCommunicationsHandler(svc.Communications, b))
					r.Post("/filter", filterCommunicationsHandler(svc.Communications, b))
					r.Get("/{id}", getCommunicationHandler(svc.Communications, b))
					r.Post("/", createCommunicationHandler(svc.Communications, b))
					r.Put("/{id}", updateCommunicationHandler(svc.Communications, b))
					r.Delete("/{id}", deleteCommunicationHandler(svc.Communications, b))
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}

// adminGate guards user creation and deletion.
func adminGate(b *boundary, roles []string) func(http.Handler) http.Handler {
	if len(roles) == 1 {
		return requireRole(b, roles[0])
	}
	return requireAnyRole(b, roles...)
}
