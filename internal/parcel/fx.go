package parcel

import (
	"github.com/smartlogix/cargopro/internal/parcel/repository"
	"github.com/smartlogix/cargopro/internal/parcel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("parcel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
