package membership

import (
	"go.uber.org/fx"

	"github.com/masjidkita/masjidkita/internal/membership/repository"
	"github.com/masjidkita/masjidkita/internal/membership/service"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
