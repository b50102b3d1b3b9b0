package printer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	writes   [][]byte
	closes   int
	writeErr error
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	c.writes = append(c.writes, buf)
	return len(p), nil
}

// Close always errors so tests prove teardown swallows it.
func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return errors.New("close failed")
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

type fakeDialer struct {
	mu         sync.Mutex
	devices    []Device
	bondedErr  error
	dialErr    error
	dials      int
	lastConn   *fakeConn
	block      chan struct{}
	bondedGate chan struct{}
}

func (d *fakeDialer) Bonded(context.Context) ([]Device, error) {
	if d.bondedGate != nil {
		<-d.bondedGate
	}
	return d.devices, d.bondedErr
}

func (d *fakeDialer) Dial(_ context.Context, address string) (io.WriteCloser, error) {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	d.lastConn = &fakeConn{}
	return d.lastConn, nil
}

type memStore struct {
	mu      sync.Mutex
	address string
}

func (s *memStore) PrinterAddress(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address, nil
}

func (s *memStore) SavePrinterAddress(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	return nil
}

type staticPerms struct {
	granted    bool
	requestOK  bool
	requestErr error
}

func (p staticPerms) Granted(context.Context) bool { return p.granted }

func (p staticPerms) Request(context.Context) (bool, error) { return p.requestOK, p.requestErr }

func TestConnectSingleDeviceGoesStraightToConnected(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Name: "TP-58", Address: "AA:BB"}}}
	store := &memStore{}
	m := NewManager(dialer, staticPerms{granted: true}, store)

	candidates, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, candidates)
	assert.Equal(t, StateConnected, m.State())

	device, ok := m.ConnectedDevice()
	assert.True(t, ok)
	assert.Equal(t, "AA:BB", device.Address)
	assert.Equal(t, "AA:BB", store.address)
}

func TestConnectSkipsPermissionPromptWhenGranted(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	m := NewManager(dialer, staticPerms{granted: true, requestOK: false}, nil)

	// Request would deny; Connect must not consult it when already granted.
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConnected, m.State())
}

func TestConnectPermissionDenied(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	m := NewManager(dialer, staticPerms{granted: false, requestOK: false}, nil)

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, StateDisconnected, m.State())
	assert.Zero(t, dialer.dials)
}

func TestConnectMultipleDevicesParksInSelection(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{
		{Name: "TP-58", Address: "AA:BB"},
		{Name: "TP-80", Address: "CC:DD"},
	}}
	m := NewManager(dialer, staticPerms{granted: true}, nil)

	candidates, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, StateDeviceSelectionPending, m.State())
	assert.Zero(t, dialer.dials)

	require.NoError(t, m.Select(context.Background(), "CC:DD"))
	assert.Equal(t, StateConnected, m.State())
	device, _ := m.ConnectedDevice()
	assert.Equal(t, "CC:DD", device.Address)
}

func TestSelectOutsidePendingState(t *testing.T) {
	m := NewManager(&fakeDialer{}, staticPerms{granted: true}, nil)
	err := m.Select(context.Background(), "AA:BB")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSelectClaimsPendingSelectionOnce(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{
		{Address: "AA:BB"},
		{Address: "CC:DD"},
	}}
	m := NewManager(dialer, staticPerms{granted: true}, nil)

	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateDeviceSelectionPending, m.State())

	// Park the first Select inside device enumeration so the second one
	// arrives while it is still mid-flight.
	dialer.bondedGate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Select(context.Background(), "AA:BB")
	}()
	for m.State() != StateConnecting {
		time.Sleep(time.Millisecond)
	}

	err = m.Select(context.Background(), "CC:DD")
	assert.ErrorIs(t, err, ErrNoSelection)

	close(dialer.bondedGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateConnected, m.State())
	assert.Equal(t, 1, dialer.dials)
	device, _ := m.ConnectedDevice()
	assert.Equal(t, "AA:BB", device.Address)
}

func TestConnectNoBondedDevices(t *testing.T) {
	m := NewManager(&fakeDialer{}, staticPerms{granted: true}, nil)
	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoBondedDevices)
	assert.Equal(t, StateDisconnected, m.State())
}

func TestConnectSingleFlight(t *testing.T) {
	dialer := &fakeDialer{
		devices: []Device{{Address: "AA:BB"}},
		block:   make(chan struct{}),
	}
	m := NewManager(dialer, staticPerms{granted: true}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := m.Connect(context.Background())
		done <- err
	}()

	// Wait until the first connect is past beginConnect.
	for m.State() != StateConnecting {
		time.Sleep(time.Millisecond)
	}

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnectInFlight)

	close(dialer.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateConnected, m.State())
}

func TestPrintFailsFastWhenDisconnected(t *testing.T) {
	m := NewManager(&fakeDialer{}, staticPerms{granted: true}, nil)
	err := m.Print(context.Background(), []byte{0x1B, '@'})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestPrintWritesAndRestoresConnected(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	m := NewManager(dialer, staticPerms{granted: true}, nil)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	payload := []byte{0x1B, '@', 0x0A}
	require.NoError(t, m.Print(context.Background(), payload))

	assert.Equal(t, StateConnected, m.State())
	require.Len(t, dialer.lastConn.writes, 1)
	assert.Equal(t, payload, dialer.lastConn.writes[0])
}

func TestPrintWriteErrorTearsDown(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	m := NewManager(dialer, staticPerms{granted: true}, nil)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	dialer.lastConn.writeErr = errors.New("pipe broken")
	err = m.Print(context.Background(), []byte{0x0A})
	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, m.State())
	assert.Equal(t, 1, dialer.lastConn.closeCount())
}

func TestDisconnectClosesExactlyOnceAndSwallowsError(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	m := NewManager(dialer, staticPerms{granted: true}, nil)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	conn := dialer.lastConn
	m.Disconnect()
	assert.Equal(t, StateDisconnected, m.State())
	assert.Equal(t, 1, conn.closeCount())

	// Repeated teardown must not touch the closed conn again.
	m.Disconnect()
	assert.Equal(t, 1, conn.closeCount())

	err = m.Print(context.Background(), []byte{0x0A})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReconnectUsesRememberedAddress(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Name: "TP-58", Address: "AA:BB"}}}
	store := &memStore{address: "AA:BB"}
	m := NewManager(dialer, staticPerms{granted: true}, store)

	m.Reconnect(context.Background())
	assert.Equal(t, StateConnected, m.State())
}

func TestReconnectIsSilentOnFailure(t *testing.T) {
	// Remembered device no longer bonded.
	dialer := &fakeDialer{devices: []Device{{Address: "CC:DD"}}}
	store := &memStore{address: "AA:BB"}
	m := NewManager(dialer, staticPerms{granted: true}, store)

	m.Reconnect(context.Background())
	assert.Equal(t, StateDisconnected, m.State())
	assert.Zero(t, dialer.dials)
	// The remembered address survives for the next manual connect.
	assert.Equal(t, "AA:BB", store.address)
}

func TestReconnectNoopWithoutRememberedAddress(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	m := NewManager(dialer, staticPerms{granted: true}, &memStore{})

	m.Reconnect(context.Background())
	assert.Equal(t, StateDisconnected, m.State())
	assert.Zero(t, dialer.dials)
}

func TestReconnectDoesNotPrompt(t *testing.T) {
	dialer := &fakeDialer{devices: []Device{{Address: "AA:BB"}}}
	store := &memStore{address: "AA:BB"}
	m := NewManager(dialer, staticPerms{granted: false, requestOK: true}, store)

	m.Reconnect(context.Background())
	assert.Equal(t, StateDisconnected, m.State())
	assert.Zero(t, dialer.dials)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "permission_pending", StatePermissionPending.String())
	assert.Equal(t, "device_selection_pending", StateDeviceSelectionPending.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "printing", StatePrinting.String())
	assert.Equal(t, "unknown", State(99).String())
}
