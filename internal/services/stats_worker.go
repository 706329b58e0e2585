package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"dynlink/internal/models"

	"github.com/mssola/user_agent"
)

// Headers kept in a click's raw_data snapshot.
var snapshotHeaders = []string{
	"User-Agent",
	"Referer",
	"Accept-Language",
	"Sec-Ch-Ua-Platform",
	"Sec-Ch-Ua-Mobile",
	"X-Forwarded-For",
}

type ClickRequest struct {
	Code      string
	Header    http.Header
	IPAddress string
	At        time.Time
}

type clickAppender interface {
	AppendClick(ctx context.Context, click *models.Click) error
}

// ClickRecorder writes click events off the request path. Requests are queued
// on a buffered channel and drained by Start; anything still queued when the
// process exits is lost.
type ClickRecorder struct {
	store        clickAppender
	logger       *slog.Logger
	clickChannel chan ClickRequest
	geoIPService *GeoIPService
	writeTimeout time.Duration
}

func NewClickRecorder(store clickAppender, logger *slog.Logger, geoIPService *GeoIPService, bufferSize int) *ClickRecorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ClickRecorder{
		store:        store,
		logger:       logger,
		clickChannel: make(chan ClickRequest, bufferSize),
		geoIPService: geoIPService,
		writeTimeout: 5 * time.Second,
	}
}

func (s *ClickRecorder) Start(ctx context.Context) {
	s.logger.Info("Click recorder starting")
	for {
		select {
		case req := <-s.clickChannel:
			writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
			if err := s.RecordClick(writeCtx, req); err != nil {
				s.logger.Error("Failed to record click", "code", req.Code, "error", err)
			}
			cancel()
		case <-ctx.Done():
			s.logger.Info("Click recorder stopping", "pending", len(s.clickChannel))
			return
		}
	}
}

// RecordClickAsync queues a click without blocking. A full queue drops it.
func (s *ClickRecorder) RecordClickAsync(req ClickRequest) {
	if req.At.IsZero() {
		req.At = time.Now()
	}
	select {
	case s.clickChannel <- req:
	default:
		s.logger.Warn("Click channel full, dropping click event", "code", req.Code)
	}
}

// RecordClick classifies and persists one click synchronously.
func (s *ClickRecorder) RecordClick(ctx context.Context, req ClickRequest) error {
	click, err := s.buildClick(req)
	if err != nil {
		return err
	}
	if err := s.store.AppendClick(ctx, click); err != nil {
		return fmt.Errorf("append click: %w", err)
	}
	return nil
}

func (s *ClickRecorder) buildClick(req ClickRequest) (*models.Click, error) {
	uaString := req.Header.Get("User-Agent")
	maskedIP := s.maskIP(req.IPAddress)

	raw, err := s.snapshot(req.Header, maskedIP)
	if err != nil {
		return nil, fmt.Errorf("snapshot request: %w", err)
	}

	at := req.At
	if at.IsZero() {
		at = time.Now()
	}

	click := &models.Click{
		LinkID:     req.Code,
		Timestamp:  at,
		DeviceType: ClassifyDevice(uaString),
		RawData:    raw,
		IPAddress:  maskedIP,
		Country:    s.geoIPService.GetCountry(req.IPAddress),
		Referrer:   truncate(req.Header.Get("Referer"), 255),
	}
	if click.Referrer == "" {
		click.Referrer = "Direct"
	}

	if uaString != "" {
		ua := user_agent.New(uaString)
		name, version := ua.Browser()
		click.Browser = truncate(strings.TrimSpace(name+" "+version), 50)
		click.OS = truncate(ua.OS(), 100)
	}
	return click, nil
}

func (s *ClickRecorder) snapshot(h http.Header, maskedIP string) (string, error) {
	data := make(map[string]string, len(snapshotHeaders)+1)
	for _, name := range snapshotHeaders {
		if v := h.Get(name); v != "" {
			data[name] = v
		}
	}
	// Forwarded chains carry client addresses; keep only the masked one.
	if _, ok := data["X-Forwarded-For"]; ok {
		data["X-Forwarded-For"] = maskedIP
	}
	if maskedIP != "" {
		data["ip"] = maskedIP
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *ClickRecorder) maskIP(ip string) string {
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == '.' {
			return ip[:i] + ".0"
		}
		if ip[i] == ':' {
			return "IPv6 (Masked)"
		}
	}
	return ip
}

// truncate caps s at n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
