package printer

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

// State is the connection lifecycle position of the manager.
type State int

const (
	StateDisconnected State = iota
	StatePermissionPending
	StateDeviceSelectionPending
	StateConnecting
	StateConnected
	StatePrinting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StatePermissionPending:
		return "permission_pending"
	case StateDeviceSelectionPending:
		return "device_selection_pending"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StatePrinting:
		return "printing"
	default:
		return "unknown"
	}
}

var (
	// ErrNotConnected is returned when a print is requested without an open
	// connection; callers surface it instead of silently queuing the job.
	ErrNotConnected = errors.New("printer not connected")
	// ErrConnectInFlight rejects a second connect while one is running so two
	// sockets are never opened concurrently.
	ErrConnectInFlight = errors.New("printer connect already in flight")
	// ErrPermissionDenied terminates a connect attempt; the user must retry.
	ErrPermissionDenied = errors.New("printer permission denied")
	// ErrNoSelection is returned by Select outside the selection state.
	ErrNoSelection = errors.New("no device selection pending")
	// ErrNoBondedDevices is returned when enumeration finds nothing to pick.
	ErrNoBondedDevices = errors.New("no bonded printers found")
)

// Device identifies one bonded printer.
type Device struct {
	Name    string
	Address string
}

// Dialer abstracts the serial-profile transport: bonded-device enumeration
// plus opening a byte-stream connection to one address.
type Dialer interface {
	Bonded(ctx context.Context) ([]Device, error)
	Dial(ctx context.Context, address string) (io.WriteCloser, error)
}

// PermissionChecker gates transport access. Granted probes the current
// capability; Request may prompt and blocks until the platform answers.
type PermissionChecker interface {
	Granted(ctx context.Context) bool
	Request(ctx context.Context) (bool, error)
}

// AddressStore persists the remembered printer between runs.
type AddressStore interface {
	PrinterAddress(ctx context.Context) (string, error)
	SavePrinterAddress(ctx context.Context, address string) error
}

// Event records one state transition.
type Event struct {
	From   State
	To     State
	Device Device
	Err    error
}

// Manager owns the single printer connection. All transitions run under one
// mutex; the open conn is never handed out, so nothing else can write to or
// close it. State changes stream over Events for a UI-style observer; the
// channel is buffered and sends never block, a detached listener just misses
// events.
type Manager struct {
	dialer Dialer
	perms  PermissionChecker
	store  AddressStore
	logger *zap.Logger
	events chan Event

	mu        sync.Mutex
	state     State
	conn      io.WriteCloser
	device    Device
	connectIF bool
}

// Option tweaks manager construction.
type Option func(*Manager)

// WithLogger attaches a logger; a nop logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager wires a manager over the given transport. store may be nil when
// nothing should be remembered (tests, one-shot CLI prints).
func NewManager(dialer Dialer, perms PermissionChecker, store AddressStore, opts ...Option) *Manager {
	m := &Manager{
		dialer: dialer,
		perms:  perms,
		store:  store,
		logger: zap.NewNop(),
		events: make(chan Event, 16),
		state:  StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Events exposes the state-transition stream.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State reports the current lifecycle position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ConnectedDevice returns the device of the live connection, if any.
func (m *Manager) ConnectedDevice() (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device, m.conn != nil
}

// Connect runs the explicit user-initiated connect flow. With permission
// granted it enumerates bonded devices: exactly one device connects
// immediately; several devices park the manager in the selection state and
// return the list for the caller to pick from via Select.
func (m *Manager) Connect(ctx context.Context) ([]Device, error) {
	if err := m.beginConnect(); err != nil {
		return nil, err
	}

	if !m.perms.Granted(ctx) {
		m.transition(StatePermissionPending, Device{}, nil)
		granted, err := m.perms.Request(ctx)
		if err != nil || !granted {
			m.endConnect(StateDisconnected, Device{}, ErrPermissionDenied)
			if err != nil {
				return nil, err
			}
			return nil, ErrPermissionDenied
		}
	}

	devices, err := m.dialer.Bonded(ctx)
	if err != nil {
		m.endConnect(StateDisconnected, Device{}, err)
		return nil, err
	}
	if len(devices) == 0 {
		m.endConnect(StateDisconnected, Device{}, ErrNoBondedDevices)
		return nil, ErrNoBondedDevices
	}

	if len(devices) == 1 {
		return nil, m.dialLocked(ctx, devices[0], true)
	}

	m.transition(StateDeviceSelectionPending, Device{}, nil)
	// The connect stays in flight until Select or Disconnect resolves it.
	return devices, nil
}

// Select completes a pending device selection. The selection is claimed and
// the state moved to Connecting in one critical section, so a concurrent
// Select for the same pending connect loses the race and gets ErrNoSelection
// instead of opening a second socket.
func (m *Manager) Select(ctx context.Context, address string) error {
	m.mu.Lock()
	if m.state != StateDeviceSelectionPending {
		m.mu.Unlock()
		return ErrNoSelection
	}
	m.setStateLocked(StateConnecting, Device{}, nil)
	m.mu.Unlock()

	devices, err := m.dialer.Bonded(ctx)
	if err != nil {
		m.endConnect(StateDisconnected, Device{}, err)
		return err
	}
	for _, d := range devices {
		if d.Address == address {
			return m.dialLocked(ctx, d, true)
		}
	}
	err = ErrNoBondedDevices
	m.endConnect(StateDisconnected, Device{}, err)
	return err
}

// Reconnect is the silent startup path: if a remembered address exists and is
// still bonded it attempts a connect, otherwise it does nothing. Failures are
// logged and swallowed; the user never asked for this connection, so no error
// reaches them and the remembered address is left untouched.
func (m *Manager) Reconnect(ctx context.Context) {
	if m.store == nil {
		return
	}
	address, err := m.store.PrinterAddress(ctx)
	if err != nil || address == "" {
		return
	}
	if err := m.beginConnect(); err != nil {
		return
	}
	if !m.perms.Granted(ctx) {
		m.endConnect(StateDisconnected, Device{}, nil)
		return
	}

	devices, err := m.dialer.Bonded(ctx)
	if err != nil {
		m.endConnect(StateDisconnected, Device{}, nil)
		return
	}
	for _, d := range devices {
		if d.Address == address {
			if err := m.dialLocked(ctx, d, false); err != nil {
				m.logger.Debug("silent printer reconnect failed",
					zap.String("address", address), zap.Error(err))
			}
			return
		}
	}
	m.logger.Debug("remembered printer no longer bonded", zap.String("address", address))
	m.endConnect(StateDisconnected, Device{}, nil)
}

// Print writes one encoded job to the open connection. It fails fast when
// disconnected and serializes against concurrent prints: within a connection
// lifetime, connect-then-print is strictly ordered. A write error tears the
// connection down; the stream position is unknown after a failed write.
func (m *Manager) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.state != StateConnected || m.conn == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	conn, device := m.conn, m.device
	m.setStateLocked(StatePrinting, device, nil)
	m.mu.Unlock()

	_, err := conn.Write(data)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.closeLocked()
		m.setStateLocked(StateDisconnected, Device{}, err)
		return err
	}
	// Teardown may have raced the write; only restore Connected when the
	// conn we printed on is still the live one.
	if m.conn == conn {
		m.setStateLocked(StateConnected, device, nil)
	}
	return nil
}

// Disconnect tears the connection down from any state. Close errors are
// swallowed: teardown is not allowed to fail.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	m.connectIF = false
	if m.state != StateDisconnected {
		m.setStateLocked(StateDisconnected, Device{}, nil)
	}
}

func (m *Manager) beginConnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectIF || m.state == StateConnecting || m.state == StatePermissionPending ||
		m.state == StateDeviceSelectionPending {
		return ErrConnectInFlight
	}
	m.connectIF = true
	return nil
}

func (m *Manager) endConnect(state State, device Device, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectIF = false
	m.setStateLocked(state, device, err)
}

// dialLocked performs Connecting -> Connected|Disconnected and optionally
// persists the address as the remembered printer.
func (m *Manager) dialLocked(ctx context.Context, device Device, remember bool) error {
	m.transition(StateConnecting, device, nil)

	conn, err := m.dialer.Dial(ctx, device.Address)
	if err != nil {
		m.mu.Lock()
		m.closeLocked()
		m.connectIF = false
		m.setStateLocked(StateDisconnected, Device{}, err)
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	// Reconnecting replaces rather than stacks.
	m.closeLocked()
	m.conn = conn
	m.device = device
	m.connectIF = false
	m.setStateLocked(StateConnected, device, nil)
	m.mu.Unlock()

	if remember && m.store != nil {
		if err := m.store.SavePrinterAddress(ctx, device.Address); err != nil {
			m.logger.Warn("failed to remember printer address",
				zap.String("address", device.Address), zap.Error(err))
		}
	}
	return nil
}

func (m *Manager) transition(state State, device Device, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setStateLocked(state, device, err)
}

func (m *Manager) setStateLocked(state State, device Device, err error) {
	from := m.state
	m.state = state
	if state == StateConnected || state == StatePrinting {
		m.device = device
	} else if state == StateDisconnected {
		m.device = Device{}
	}
	ev := Event{From: from, To: state, Device: device, Err: err}
	select {
	case m.events <- ev:
	default:
	}
	m.logger.Debug("printer state change",
		zap.Stringer("from", from),
		zap.Stringer("to", state),
		zap.String("device", device.Address),
		zap.Error(err),
	)
}

func (m *Manager) closeLocked() {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}
