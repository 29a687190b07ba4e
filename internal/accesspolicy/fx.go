package accesspolicy

import "go.uber.org/fx"

var Module = fx.Module("accesspolicy",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
