package emails

import (
	"go.uber.org/fx"
)

// Module provides emails dependencies
var Module = fx.Module("emails",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
