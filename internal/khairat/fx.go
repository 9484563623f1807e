package khairat

import (
	"go.uber.org/fx"

	"github.com/masjidkita/masjidkita/internal/khairat/repository"
	"github.com/masjidkita/masjidkita/internal/khairat/service"
)

var Module = fx.Module("khairat.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
