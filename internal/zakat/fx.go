package zakat

import (
	"go.uber.org/fx"

	"github.com/masjidkita/masjidkita/internal/zakat/repository"
	"github.com/masjidkita/masjidkita/internal/zakat/service"
)

var Module = fx.Module("zakat.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
