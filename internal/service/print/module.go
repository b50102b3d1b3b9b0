package print

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/print/printer"
	sessionrepo "github.com/almada-laundry/almada/internal/repository/session"
)

// Module wires the printer connection manager and the print pipeline.
var Module = fx.Options(
	fx.Provide(NewManager),
	fx.Provide(NewService),
	fx.Invoke(registerLifecycle),
)

// NewManager builds the connection manager for the configured transport. The
// session repository doubles as the remembered-address store.
func NewManager(cfg config.Config, sessions *sessionrepo.Repository, logger *zap.Logger) *printer.Manager {
	var (
		dialer printer.Dialer
		perms  printer.PermissionChecker
	)
	switch cfg.Printer.Driver {
	case "serial":
		dialer = printer.SerialDialer{Glob: cfg.Printer.DeviceGlob}
		perms = printer.DeviceAccessPermission{}
	case "network":
		dialer = printer.NetDialer{
			Addresses: cfg.Printer.Addresses,
			Timeout:   cfg.Printer.DialTimeout,
		}
		perms = printer.StaticPermission(true)
	case "file":
		dialer = printer.FileDialer{Path: cfg.Printer.OutputPath}
		perms = printer.StaticPermission(true)
	default:
		dialer = printer.NoopDialer{}
		perms = printer.StaticPermission(false)
	}
	return printer.NewManager(dialer, perms, sessions, printer.WithLogger(logger))
}

// registerLifecycle attempts the silent reconnect to the remembered printer
// on startup and tears the connection down on shutdown.
func registerLifecycle(lc fx.Lifecycle, cfg config.Config, manager *printer.Manager, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Printer.ReconnectOnStart || cfg.Printer.Driver == "none" {
				return nil
			}
			go func() {
				manager.Reconnect(context.Background())
				if manager.State() == printer.StateConnected {
					if device, ok := manager.ConnectedDevice(); ok {
						logger.Info("reconnected to remembered printer", zap.String("address", device.Address))
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			manager.Disconnect()
			return nil
		},
	})
}
