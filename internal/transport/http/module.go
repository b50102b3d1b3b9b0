package http

import (
	"go.uber.org/fx"

	authtransport "github.com/almada-laundry/almada/internal/transport/http/auth"
	"github.com/almada-laundry/almada/internal/transport/http/middleware"
	ordertransport "github.com/almada-laundry/almada/internal/transport/http/order"
	printertransport "github.com/almada-laundry/almada/internal/transport/http/printer"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	fx.Provide(middleware.NewAuth),
	authtransport.Module,
	ordertransport.Module,
	printertransport.Module,
)
