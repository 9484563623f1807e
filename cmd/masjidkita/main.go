package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/masjidkita/masjidkita/internal/audit"
	"github.com/masjidkita/masjidkita/internal/auth"
	"github.com/masjidkita/masjidkita/internal/authz"
	"github.com/masjidkita/masjidkita/internal/clock"
	"github.com/masjidkita/masjidkita/internal/config"
	"github.com/masjidkita/masjidkita/internal/finance"
	"github.com/masjidkita/masjidkita/internal/khairat"
	"github.com/masjidkita/masjidkita/internal/legacy"
	"github.com/masjidkita/masjidkita/internal/logger"
	"github.com/masjidkita/masjidkita/internal/membership"
	"github.com/masjidkita/masjidkita/internal/migration"
	"github.com/masjidkita/masjidkita/internal/mosque"
	"github.com/masjidkita/masjidkita/internal/notification"
	"github.com/masjidkita/masjidkita/internal/observability"
	"github.com/masjidkita/masjidkita/internal/ratelimit"
	"github.com/masjidkita/masjidkita/internal/server"
	"github.com/masjidkita/masjidkita/internal/zakat"
	"github.com/masjidkita/masjidkita/pkg/db"
)

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func main() {
	fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		auth.Module,
		mosque.Module,
		authz.Module,
		audit.Module,
		notification.Module,
		membership.Module,
		finance.Module,
		khairat.Module,
		legacy.Module,
		zakat.Module,
		ratelimit.Module,
		observability.Module,
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	).Run()
}
