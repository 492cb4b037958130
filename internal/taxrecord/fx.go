package taxrecord

import (
	"github.com/dukandar/khata/internal/taxrecord/repository"
	"github.com/dukandar/khata/internal/taxrecord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxrecord.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
