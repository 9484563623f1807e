package mosque

import (
	"github.com/masjidkita/masjidkita/internal/mosque/repository"
	"github.com/masjidkita/masjidkita/internal/mosque/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mosque.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
