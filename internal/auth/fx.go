package auth

import (
	"github.com/masjidkita/masjidkita/internal/auth/repository"
	"github.com/masjidkita/masjidkita/internal/auth/service"
	"github.com/masjidkita/masjidkita/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(repository.NewSessionRepository),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
