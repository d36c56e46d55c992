package threads

import (
	"go.uber.org/fx"
)

// Module provides threads dependencies
var Module = fx.Module("threads",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
