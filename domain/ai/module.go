package ai

import (
	"go.uber.org/fx"
)

// Module provides ai dependencies
var Module = fx.Module("ai",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
