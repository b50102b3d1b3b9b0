package printer

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"
)

// SPPUUID is the well-known Bluetooth Serial Port Profile service id. The
// OS binds a bonded SPP device to a serial node (rfcomm on Linux), which is
// what SerialDialer opens; the UUID is kept here for the pairing tooling.
const SPPUUID = "00001101-0000-1000-8000-00805F9B34FB"

// SerialDialer talks to printers exposed as serial device nodes, the usual
// shape of a bonded Bluetooth SPP printer. Bonded enumerates nodes matching
// Glob (default /dev/rfcomm*).
type SerialDialer struct {
	Glob string
}

// Bonded lists accessible serial device nodes.
func (d SerialDialer) Bonded(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	glob := d.Glob
	if glob == "" {
		glob = "/dev/rfcomm*"
	}
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("printer: enumerate %q: %w", glob, err)
	}
	devices := make([]Device, 0, len(paths))
	for _, path := range paths {
		devices = append(devices, Device{
			Name:    filepath.Base(path),
			Address: path,
		})
	}
	return devices, nil
}

// Dial opens the device node write-only.
func (d SerialDialer) Dial(ctx context.Context, address string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(address, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("printer: open %s: %w", address, err)
	}
	return f, nil
}

// NetDialer reaches network thermal printers over raw TCP (port 9100 by
// convention). Addresses is the operator-configured printer list, standing in
// for bond enumeration.
type NetDialer struct {
	Addresses []string
	Timeout   time.Duration
}

// Bonded returns the configured printer addresses.
func (d NetDialer) Bonded(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	devices := make([]Device, 0, len(d.Addresses))
	for _, addr := range d.Addresses {
		devices = append(devices, Device{Name: addr, Address: addr})
	}
	return devices, nil
}

// Dial opens a TCP stream to the printer.
func (d NetDialer) Dial(ctx context.Context, address string) (io.WriteCloser, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("printer: dial %s: %w", address, err)
	}
	return conn, nil
}

// FileDialer writes jobs to a regular file, used by the CLI test print and
// for inspecting encoded output without hardware.
type FileDialer struct {
	Path string
}

func (d FileDialer) Bonded(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Device{{Name: filepath.Base(d.Path), Address: d.Path}}, nil
}

func (d FileDialer) Dial(ctx context.Context, address string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Create(address)
	if err != nil {
		return nil, fmt.Errorf("printer: create %s: %w", address, err)
	}
	return f, nil
}

// NoopDialer is used when printing is disabled: nothing is bonded and every
// dial fails.
type NoopDialer struct{}

func (NoopDialer) Bonded(context.Context) ([]Device, error) {
	return nil, nil
}

func (NoopDialer) Dial(context.Context, string) (io.WriteCloser, error) {
	return nil, fmt.Errorf("printer: printing disabled")
}

// DeviceAccessPermission treats permission as the ability to stat the device
// directory, the server-side analogue of a Bluetooth capability grant. There
// is no interactive prompt, so Request just re-probes.
type DeviceAccessPermission struct {
	Dir string
}

func (p DeviceAccessPermission) Granted(ctx context.Context) bool {
	dir := p.Dir
	if dir == "" {
		dir = "/dev"
	}
	_, err := os.Stat(dir)
	return err == nil
}

func (p DeviceAccessPermission) Request(ctx context.Context) (bool, error) {
	return p.Granted(ctx), nil
}

// StaticPermission answers with a fixed grant, for tests and transports that
// need no capability.
type StaticPermission bool

func (p StaticPermission) Granted(context.Context) bool          { return bool(p) }
func (p StaticPermission) Request(context.Context) (bool, error) { return bool(p), nil }
