package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	notificationHandler NotificationHandler,
	healthHandler http.Handler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
		// health checkers hit these every few seconds
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/health" || req.URL.Path == "/metrics"
		},
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/health", healthHandler)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {

		// EventSource cannot send an Authorization header; the stream authenticates with its own token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.With(middleware.RequirePermission(user.PermissionAttendanceScan)).Post("/scans", attendanceHandler.Scan)

			r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/badge-events", attendanceHandler.ListEvents)

			r.Route("/badge-credentials/me", func(r chi.Router) {
				r.Use(middleware.RequireEmployee)
				r.Get("/", attendanceHandler.GetMyCredential)
				r.Post("/regenerate", attendanceHandler.RegenerateMyCredential)
			})

			r.With(middleware.RequirePermission(user.PermissionEmployeeManage)).
				Post("/employees/{id}/badge-credential/regenerate", attendanceHandler.RegenerateCredential)

			r.Route("/presences", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", attendanceHandler.ListPresence)
				r.With(middleware.RequireEmployee, middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/me", attendanceHandler.GetMyPresence)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.CreateRequest)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", leaveHandler.ListRequests)
				r.With(middleware.RequireEmployee, middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/me", leaveHandler.GetMyRequests)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.GetRequest)
					r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Patch("/status", leaveHandler.UpdateStatus)
					r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/audits", leaveHandler.ListAudits)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/sse-token", notificationHandler.GetSSEToken)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Get("/", notificationHandler.List)
					r.Get("/unread-count", notificationHandler.UnreadCount)
					r.Post("/read-all", notificationHandler.MarkAllAsRead)
					r.Patch("/{id}/read", notificationHandler.MarkAsRead)
				})
			})
		})
	})
	return r
}
