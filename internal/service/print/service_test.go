package print

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/print/printer"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

func testService(t *testing.T, dialer printer.Dialer) *Service {
	t.Helper()
	manager := printer.NewManager(dialer, printer.StaticPermission(true), nil)
	return NewService(Params{
		Config:  config.Config{Printer: config.Printer{PaperWidth: 384}},
		Manager: manager,
		Logger:  zap.NewNop(),
	})
}

func labelOrder() *entity.Order {
	return &entity.Order{
		ID:         7,
		Barcode:    "ALM-1A2B3C4D",
		Weight:     "3.5",
		TotalPrice: "24500",
		Status:     entity.StatusPending,
		OrderDate:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Customer:   &entity.Customer{Name: "Budi Santoso", Phone: "+628111111111"},
		Laundry:    &entity.Laundry{Name: "Almada Laundry"},
		Service:    &entity.ServiceType{Name: "Wash & Fold"},
	}
}

func TestEncodeLabelFullJob(t *testing.T) {
	svc := testService(t, printer.NoopDialer{})

	job, err := svc.EncodeLabel(context.Background(), labelOrder())
	require.NoError(t, err)

	// Reset, then the raster header for a 384 dot head: 48 row bytes.
	assert.Equal(t, []byte{0x1B, '@'}, job[:2])
	assert.Equal(t, []byte{0x1D, 'v', '0', 0x00, 48, 0}, job[2:8])

	height := int(job[8]) + int(job[9])*256
	assert.Greater(t, height, 160)

	// Payload length matches the header exactly, then feed and partial cut.
	rasterEnd := 10 + height*48
	require.Len(t, job, rasterEnd+5)
	assert.Equal(t, []byte{0x0A, 0x0A, 0x1D, 'V', 0x01}, job[rasterEnd:])

	// The scan code guarantees some black pixels.
	assert.NotEqual(t, bytes.Repeat([]byte{0}, rasterEnd-10), job[10:rasterEnd])
}

func TestEncodeLabelIsDeterministic(t *testing.T) {
	svc := testService(t, printer.NoopDialer{})
	order := labelOrder()

	first, err := svc.EncodeLabel(context.Background(), order)
	require.NoError(t, err)
	second, err := svc.EncodeLabel(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeLabelRequiresBarcode(t *testing.T) {
	svc := testService(t, printer.NoopDialer{})
	order := labelOrder()
	order.Barcode = ""

	_, err := svc.EncodeLabel(context.Background(), order)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
}

func TestPrintLabelWhenDisconnected(t *testing.T) {
	svc := testService(t, printer.NoopDialer{})

	err := svc.PrintLabel(context.Background(), labelOrder())
	require.Error(t, err)
	assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
}
