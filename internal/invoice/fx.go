package invoice

import (
	"github.com/smartlogix/cargopro/internal/invoice/repository"
	"github.com/smartlogix/cargopro/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
