package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "serial", cfg.Printer.Driver)
	assert.Equal(t, 384, cfg.Printer.PaperWidth)
	assert.True(t, cfg.Printer.ReconnectOnStart)
	assert.Equal(t, 24*time.Hour*30, cfg.Auth.SessionTTL)
	assert.Equal(t, "orders.status", cfg.Messaging.Kafka.Topic)
}

func TestNewRejectsUnknownPrinterDriver(t *testing.T) {
	t.Setenv("PRINTER_DRIVER", "carrier-pigeon")
	_, err := New()
	assert.Error(t, err)
}

func TestNewNetworkPrinterNeedsAddresses(t *testing.T) {
	t.Setenv("PRINTER_DRIVER", "network")
	t.Setenv("PRINTER_ADDRESSES", "")
	_, err := New()
	assert.Error(t, err)
}

func TestNewNetworkPrinterWithAddresses(t *testing.T) {
	t.Setenv("PRINTER_DRIVER", "network")
	t.Setenv("PRINTER_ADDRESSES", "192.168.1.50:9100")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.50:9100"}, cfg.Printer.Addresses)
}

func TestNewFilePrinter(t *testing.T) {
	t.Setenv("PRINTER_DRIVER", "file")
	t.Setenv("PRINTER_OUTPUT_PATH", "/tmp/label.bin")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/label.bin", cfg.Printer.OutputPath)
}
