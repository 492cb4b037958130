package drawer

import (
	"github.com/dukandar/khata/internal/drawer/repository"
	"github.com/dukandar/khata/internal/drawer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("drawer.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
