package print

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/print/escpos"
	"github.com/almada-laundry/almada/internal/print/label"
	"github.com/almada-laundry/almada/internal/print/printer"
	"github.com/almada-laundry/almada/internal/print/scancode"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/almada-laundry/almada/service/print")

// Service runs the label pipeline: order -> scan code -> composed raster ->
// ESC/POS bytes -> printer connection. Prints are serialized by a
// single-flight mutex; concurrent jobs would interleave on the shared
// output stream.
type Service struct {
	composer *label.Composer
	manager  *printer.Manager
	logger   *zap.Logger

	printMu sync.Mutex
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Config  config.Config
	Manager *printer.Manager
	Logger  *zap.Logger
}

// NewService wires the print pipeline.
func NewService(p Params) *Service {
	return &Service{
		composer: label.NewComposer(p.Config.Printer.PaperWidth),
		manager:  p.Manager,
		logger:   p.Logger,
	}
}

// Manager exposes the connection manager for transport-level connect calls.
func (s *Service) Manager() *printer.Manager {
	return s.manager
}

// EncodeLabel produces the full ESC/POS job for an order without touching
// the printer. A scan-code failure aborts before composition so no partial
// job ever exists.
func (s *Service) EncodeLabel(ctx context.Context, order *entity.Order) ([]byte, error) {
	if order == nil {
		return nil, errorbank.BadRequest("order is required")
	}
	_, span := serviceTracer.Start(ctx, "PrintService.EncodeLabel", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	code, err := scancode.QR(order.Barcode, scancode.DefaultSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan code generation failed")
		return nil, errorbank.Unprocessable("failed to generate scan code", errorbank.WithCause(err))
	}

	canvas, err := s.composer.Compose(order, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "label composition failed")
		return nil, errorbank.Internal("failed to compose label", errorbank.WithCause(err))
	}

	job, err := escpos.Document(canvas)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encoding failed")
		return nil, errorbank.Internal("failed to encode label", errorbank.WithCause(err))
	}
	return job, nil
}

// PrintLabel encodes and sends the label for an order. It fails fast with a
// user-facing message when no printer is connected.
func (s *Service) PrintLabel(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errorbank.BadRequest("order is required")
	}
	ctx, span := serviceTracer.Start(ctx, "PrintService.PrintLabel", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	job, err := s.EncodeLabel(ctx, order)
	if err != nil {
		return err
	}

	s.printMu.Lock()
	defer s.printMu.Unlock()

	if err := s.manager.Print(ctx, job); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "print failed")
		if errors.Is(err, printer.ErrNotConnected) {
			return errorbank.Unprocessable("printer not connected")
		}
		return errorbank.Internal("print failed", errorbank.WithCause(err))
	}

	if s.logger != nil {
		s.logger.Info("label printed",
			zap.Int64("order_id", order.ID),
			zap.String("barcode", order.Barcode),
			zap.Int("bytes", len(job)),
		)
	}
	return nil
}
