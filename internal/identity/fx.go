package identity

import (
	"github.com/smartlogix/cargopro/internal/identity/repository"
	"github.com/smartlogix/cargopro/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
