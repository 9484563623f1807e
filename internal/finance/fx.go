package finance

import (
	"go.uber.org/fx"

	"github.com/masjidkita/masjidkita/internal/finance/domain"
	"github.com/masjidkita/masjidkita/internal/finance/repository"
	"github.com/masjidkita/masjidkita/internal/finance/service"
)

var Module = fx.Module("finance.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	fx.Provide(func(s domain.Service) domain.Poster { return s }),
)
