// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	accountfeature "github.com/dalemusser/civictrack/internal/app/features/account"
	constituenciesfeature "github.com/dalemusser/civictrack/internal/app/features/constituencies"
	departmentsfeature "github.com/dalemusser/civictrack/internal/app/features/departments"
	healthfeature "github.com/dalemusser/civictrack/internal/app/features/health"
	issuesfeature "github.com/dalemusser/civictrack/internal/app/features/issues"
	meetingsfeature "github.com/dalemusser/civictrack/internal/app/features/meetings"
	mladashboardfeature "github.com/dalemusser/civictrack/internal/app/features/mladashboard"
	notificationsfeature "github.com/dalemusser/civictrack/internal/app/features/notifications"
	panchayatsfeature "github.com/dalemusser/civictrack/internal/app/features/panchayats"
	upvotesfeature "github.com/dalemusser/civictrack/internal/app/features/upvotes"
	usersfeature "github.com/dalemusser/civictrack/internal/app/features/users"
	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/ratelimit"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// Every request passes through request id, real-ip, panic recovery, access
// logging, CORS and bearer-token loading before reaching a feature router.
// Feature routers apply their own sign-in and role requirements.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	am := auth.NewManager(userstore.NewFetcher(db), logger)
	tx := txn.New(deps.MongoClient, logger)
	svc := hierarchy.NewForDB(db, tx, logger).WithBulkConcurrency(appCfg.BulkConcurrency)

	limiter := ratelimit.New(appCfg.AuthRateLimit, time.Minute)
	if deps.bg != nil && deps.bg.limiter != nil {
		limiter = deps.bg.limiter
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverer(logger))
	r.Use(accessLog(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(am.LoadBearerUser)

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", accountfeature.Routes(accountfeature.NewHandler(db, appCfg.TokenTTL, logger), am, limiter))
		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(db, logger), am))

		// Administrative hierarchy
		api.Mount("/constituencies", constituenciesfeature.Routes(constituenciesfeature.NewHandler(svc, logger), am))
		api.Mount("/panchayats", panchayatsfeature.Routes(panchayatsfeature.NewHandler(svc, logger), am))

		// Issues and engagement
		api.Mount("/issues", issuesfeature.Routes(issuesfeature.NewHandler(db, svc, tx, logger), am))
		api.Mount("/upvotes", upvotesfeature.Routes(upvotesfeature.NewHandler(db, tx, logger), am))
		api.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(db, logger), am))

		// MLA tools
		api.Mount("/departments", departmentsfeature.Routes(departmentsfeature.NewHandler(db, logger), am))
		api.Mount("/meetings", meetingsfeature.Routes(meetingsfeature.NewHandler(db, svc, logger), am))
		api.Mount("/mla-dashboard", mladashboardfeature.Routes(mladashboardfeature.NewHandler(db, svc, logger), am))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, logger, apierr.NotFound("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusMethodNotAllowed, respond.ErrorBody{Success: false, Message: "Method not allowed"})
	})

	return r, nil
}

// accessLog writes one structured line per request.
func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_ip", ratelimit.ClientIP(r)),
			}
			if status >= 500 {
				logger.Warn("request", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}

// recoverer turns a handler panic into a logged 500 with the standard
// error body.
func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic serving request",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.Stack("stack"))
					respond.JSON(w, http.StatusInternalServerError, respond.ErrorBody{
						Success: false,
						Message: "Internal server error",
						Error:   apierr.KindInternal.String(),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
