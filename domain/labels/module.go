package labels

import (
	"go.uber.org/fx"
)

// Module provides labels dependencies
var Module = fx.Module("labels",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
