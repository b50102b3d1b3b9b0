package app

import (
	"go.uber.org/fx"

	"github.com/almada-laundry/almada/internal/cache"
	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/database"
	"github.com/almada-laundry/almada/internal/logger"
	"github.com/almada-laundry/almada/internal/messaging"
	"github.com/almada-laundry/almada/internal/observability"
	repositoryorder "github.com/almada-laundry/almada/internal/repository/order"
	repositorysession "github.com/almada-laundry/almada/internal/repository/session"
	repositoryuser "github.com/almada-laundry/almada/internal/repository/user"
	httpserver "github.com/almada-laundry/almada/internal/server/http"
	serviceauth "github.com/almada-laundry/almada/internal/service/auth"
	serviceorder "github.com/almada-laundry/almada/internal/service/order"
	serviceprint "github.com/almada-laundry/almada/internal/service/print"
	transporthttp "github.com/almada-laundry/almada/internal/transport/http"
	"github.com/almada-laundry/almada/internal/worker"
	workerorder "github.com/almada-laundry/almada/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositorysession.Module,
	repositoryuser.Module,
	serviceauth.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	serviceprint.Module,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
