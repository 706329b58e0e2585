package handlers

import (
	"log/slog"

	"dynlink/internal/config"
	"dynlink/internal/services"
)

// clickSink receives clicks for asynchronous recording.
type clickSink interface {
	RecordClickAsync(req services.ClickRequest)
}

type Handler struct {
	cfg       config.Config
	logger    *slog.Logger
	shortener *services.ShortenerService
	resolver  *services.Resolver
	recorder  clickSink
	analytics *services.AnalyticsService
	qrService *services.QRService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	shortener *services.ShortenerService,
	resolver *services.Resolver,
	recorder clickSink,
	analytics *services.AnalyticsService,
	qrService *services.QRService,
) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		shortener: shortener,
		resolver:  resolver,
		recorder:  recorder,
		analytics: analytics,
		qrService: qrService,
	}
}
