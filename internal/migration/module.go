package migration

import "go.uber.org/fx"

// Module exposes the migrator to the CLI.
var Module = fx.Options(
	fx.Provide(New),
)
