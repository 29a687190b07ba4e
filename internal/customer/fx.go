package customer

import (
	"github.com/smartlogix/cargopro/internal/customer/repository"
	"github.com/smartlogix/cargopro/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
