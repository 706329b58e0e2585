package services

import (
	"context"
	"errors"
	"log/slog"

	"dynlink/internal/models"
	"dynlink/internal/repository"
)

// ResolveState is the terminal state of a redirect request.
type ResolveState int

const (
	StateRedirect ResolveState = iota
	StateNotFound
	StateBotBlocked
	StateNoDestination
)

func (s ResolveState) String() string {
	switch s {
	case StateRedirect:
		return "redirect"
	case StateNotFound:
		return "not_found"
	case StateBotBlocked:
		return "bot_blocked"
	case StateNoDestination:
		return "no_destination"
	default:
		return "unknown"
	}
}

type Resolution struct {
	State       ResolveState
	Code        string
	Link        *models.DynamicLink
	Device      models.DeviceType
	Destination string
}

// Resolver maps an inbound short code and user agent to a destination.
type Resolver struct {
	store  LinkStore
	cache  *repository.LinkCache
	logger *slog.Logger
}

func NewResolver(store LinkStore, cache *repository.LinkCache, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, logger: logger}
}

// Resolve runs bot check, lookup, classification and destination selection.
// NotFound, BotBlocked and NoDestination are reported through the state; a
// non-nil error means the store itself failed.
func (r *Resolver) Resolve(ctx context.Context, code, userAgent string) (Resolution, error) {
	res := Resolution{Code: code}

	if IsBot(userAgent) {
		res.State = StateBotBlocked
		return res, nil
	}

	link, err := r.lookup(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		res.State = StateNotFound
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Link = link

	res.Device = ClassifyDevice(userAgent)
	dest, ok := SelectDestination(link.Links, res.Device)
	if !ok {
		r.logger.Warn("Link has no usable destination", "code", code, "device", res.Device)
		res.State = StateNoDestination
		return res, nil
	}

	res.State = StateRedirect
	res.Destination = dest
	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, code string) (*models.DynamicLink, error) {
	if link, ok := r.cache.GetLink(ctx, code); ok {
		return link, nil
	}
	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	r.cache.SetLink(ctx, link)
	return link, nil
}
