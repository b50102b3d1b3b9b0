package session

import "go.uber.org/fx"

// Module provides the session repository to Fx.
var Module = fx.Provide(NewRepository)
