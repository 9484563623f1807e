package legacy

import (
	"go.uber.org/fx"

	"github.com/masjidkita/masjidkita/internal/legacy/repository"
	"github.com/masjidkita/masjidkita/internal/legacy/service"
)

var Module = fx.Module("legacy.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
