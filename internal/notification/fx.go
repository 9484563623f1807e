package notification

import (
	"github.com/masjidkita/masjidkita/internal/notification/repository"
	"github.com/masjidkita/masjidkita/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
