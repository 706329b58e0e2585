package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"dynlink/internal/models"
	"dynlink/internal/repository"
)

// CreateLinkInput carries the form fields plus the request data needed to
// build an absolute short URL when BASE_URL is not configured.
type CreateLinkInput struct {
	DesktopURL     string
	AndroidURL     string
	IOSURL         string
	Host           string
	ForwardedProto string
	TLS            bool
	IPAddress      string // For audit log
}

type CreatedLink struct {
	Link     *models.DynamicLink
	ShortURL string
	QRCode   string // base64 PNG, empty if rendering failed
}

type ShortenerService struct {
	store   LinkStore
	cache   *repository.LinkCache
	codes   *CodeGenerator
	audit   *AuditService
	qr      *QRService
	logger  *slog.Logger
	baseURL string
	now     func() time.Time
}

func NewShortenerService(
	baseURL string,
	store LinkStore,
	cache *repository.LinkCache,
	audit *AuditService,
	qr *QRService,
	logger *slog.Logger,
) *ShortenerService {
	return &ShortenerService{
		store:   store,
		cache:   cache,
		codes:   NewCodeGenerator(store),
		audit:   audit,
		qr:      qr,
		logger:  logger,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (s *ShortenerService) CreateLink(ctx context.Context, in CreateLinkInput) (*CreatedLink, error) {
	// 1. Validate destinations
	links, err := validateDestinations(in)
	if err != nil {
		return nil, err
	}

	// 2. Resolve base URL before touching the store
	base, err := s.resolveBaseURL(in)
	if err != nil {
		return nil, err
	}

	// 3. Claim a code by inserting the record
	var link *models.DynamicLink
	code, err := s.codes.Claim(ctx, func(ctx context.Context, code string) (bool, error) {
		candidate := &models.DynamicLink{
			ID:         code,
			Links:      links,
			CreatedAt:  s.now(),
			ClickCount: 0,
		}
		ok, err := s.store.InsertIfAbsent(ctx, candidate)
		if ok {
			link = candidate
		}
		return ok, err
	})
	if err != nil {
		if errors.Is(err, ErrGenerationExhausted) {
			s.logger.Warn("Short code generation exhausted", "attempts", MaxCodeAttempts)
			return nil, err
		}
		return nil, &PersistenceError{Op: "create link", Err: err}
	}

	// 4. Side effects
	s.cache.InvalidateRecent(ctx)
	s.audit.LogAction(ActionCreateLink, code, links, in.IPAddress)

	created := &CreatedLink{
		Link:     link,
		ShortURL: base + "/" + code,
	}
	if s.qr != nil {
		qr, _, err := s.qr.GenerateQRCode(QROptions{Content: created.ShortURL, Size: 256})
		if err != nil {
			s.logger.Warn("QR rendering failed", "code", code, "error", err)
		} else {
			created.QRCode = qr
		}
	}
	return created, nil
}

func validateDestinations(in CreateLinkInput) (models.Destinations, error) {
	links := models.Destinations{
		Desktop: strings.TrimSpace(in.DesktopURL),
		Android: strings.TrimSpace(in.AndroidURL),
		IOS:     strings.TrimSpace(in.IOSURL),
	}
	if links.Empty() {
		return links, &ValidationError{Message: "at least one destination URL is required"}
	}

	fields := []struct {
		name  string
		value string
	}{
		{"desktop_url", links.Desktop},
		{"android_url", links.Android},
		{"ios_url", links.IOS},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !isDestinationURL(f.value) {
			return links, &ValidationError{Field: f.name, Message: "must be an absolute URL"}
		}
	}
	return links, nil
}

// Schemes that would run in the visitor's browser instead of navigating.
var blockedSchemes = map[string]bool{"javascript": true, "data": true, "vbscript": true}

// isDestinationURL accepts any absolute URL, including app deep links such as
// market:// or itms-apps://.
func isDestinationURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return false
	}
	if blockedSchemes[strings.ToLower(u.Scheme)] {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

var placeholderMarkers = []string{"your-domain", "yourdomain", "your_domain", "changeme", "placeholder"}

func usableBaseURL(raw string) bool {
	if !isAbsoluteHTTPURL(raw) {
		return false
	}
	lower := strings.ToLower(raw)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

func (s *ShortenerService) resolveBaseURL(in CreateLinkInput) (string, error) {
	if usableBaseURL(s.baseURL) {
		return strings.TrimRight(s.baseURL, "/"), nil
	}

	host := strings.TrimSpace(in.Host)
	if host == "" {
		return "", ErrConfiguration
	}

	proto := strings.TrimSpace(strings.Split(in.ForwardedProto, ",")[0])
	if proto != "http" && proto != "https" {
		proto = "http"
		if in.TLS {
			proto = "https"
		}
	}
	return proto + "://" + host, nil
}
