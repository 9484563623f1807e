// Package server wires the HTTP surface: routing, middleware, and the
// lifecycle of the listener.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	authdomain "github.com/masjidkita/masjidkita/internal/auth/domain"
	"github.com/masjidkita/masjidkita/internal/auth/session"
	"github.com/masjidkita/masjidkita/internal/config"
	"github.com/masjidkita/masjidkita/internal/observability"
)

// EngineParams collects everything NewEngine needs from the graph.
type EngineParams struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Users    authdomain.Service
	Sessions *session.Manager
	Metrics  *observability.HTTPMetrics

	Auth          *AuthHandler
	Mosques       *MosqueHandler
	Memberships   *MembershipHandler
	Notifications *NotificationHandler
	Legacy        *LegacyHandler
	Khairat       *KhairatHandler
	Finance       *FinanceHandler
	Zakat         *ZakatHandler

	// Forces tracer provider construction before the first request.
	Tracer *sdktrace.TracerProvider
}

// NewEngine builds the router with the full middleware stack and all routes
// registered.
func NewEngine(p EngineParams) *gin.Engine {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(p.Log))
	r.Use(observability.TracingMiddleware(p.Config.AppName))
	r.Use(p.Metrics.Middleware())
	r.Use(ErrorHandler(p.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": p.Config.AppVersion})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := AuthRequired(p.Sessions, p.Users)
	p.Auth.Register(r, auth)

	api := r.Group("/api", auth)
	p.Mosques.Register(api)
	p.Memberships.Register(api)
	p.Notifications.Register(api)
	p.Legacy.Register(api)
	p.Khairat.Register(api)
	p.Finance.Register(api)
	p.Zakat.Register(api)

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Run starts the HTTP listener under the fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module provides the handlers, the engine, and the running server.
var Module = fx.Module("server",
	fx.Provide(
		NewAuthHandler,
		NewMosqueHandler,
		NewMembershipHandler,
		NewNotificationHandler,
		NewLegacyHandler,
		NewKhairatHandler,
		NewFinanceHandler,
		NewZakatHandler,
		NewEngine,
	),
	fx.Invoke(Run),
)
