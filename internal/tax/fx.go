package tax

import (
	"github.com/dukandar/khata/internal/tax/repository"
	"github.com/dukandar/khata/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
