package document

import (
	"github.com/smartlogix/cargopro/internal/document/repository"
	"github.com/smartlogix/cargopro/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
