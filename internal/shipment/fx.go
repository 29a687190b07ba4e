package shipment

import (
	"github.com/smartlogix/cargopro/internal/shipment/repository"
	"github.com/smartlogix/cargopro/internal/shipment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shipment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
