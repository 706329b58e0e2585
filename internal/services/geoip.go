package services

import (
	"context"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

type geoReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Metadata() maxminddb.Metadata
	Close() error
}

// GeoIPService resolves click IPs to a country using a local MaxMind database.
// The file is kept fresh by an external geoipupdate job; StartReloader picks up
// new versions.
type GeoIPService struct {
	dbPath   string
	logger   *slog.Logger
	open     func(path string) (geoReader, error)
	mu       sync.RWMutex
	reader   geoReader
	loadedAt time.Time
}

func NewGeoIPService(dbPath string, logger *slog.Logger) *GeoIPService {
	return &GeoIPService{
		dbPath: dbPath,
		logger: logger,
		open: func(path string) (geoReader, error) {
			return geoip2.Open(path)
		},
	}
}

func (s *GeoIPService) Init() {
	if s.dbPath == "" {
		s.logger.Warn("GeoIP: database path not set, lookups disabled")
		return
	}
	info, err := os.Stat(s.dbPath)
	if err != nil {
		s.logger.Warn("GeoIP: database not found, lookups disabled", "path", s.dbPath)
		return
	}
	s.reload(info.ModTime())
}

// StartReloader reopens the database whenever the file's mtime changes.
func (s *GeoIPService) StartReloader(ctx context.Context, interval time.Duration) {
	if s.dbPath == "" || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			info, err := os.Stat(s.dbPath)
			if err != nil {
				continue
			}
			s.mu.RLock()
			stale := info.ModTime().After(s.loadedAt)
			s.mu.RUnlock()
			if stale {
				s.reload(info.ModTime())
			}
		case <-ctx.Done():
			s.logger.Info("GeoIP: reloader stopping")
			return
		}
	}
}

func (s *GeoIPService) reload(modTime time.Time) {
	reader, err := s.open(s.dbPath)
	if err != nil {
		s.logger.Error("GeoIP: failed to open database", "path", s.dbPath, "error", err)
		return
	}

	s.mu.Lock()
	old := s.reader
	s.reader = reader
	s.loadedAt = modTime
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.logger.Info("GeoIP: loaded database", "epoch", reader.Metadata().BuildEpoch)
}

// GetCountry returns an English country name, or "Unknown".
func (s *GeoIPService) GetCountry(ipStr string) string {
	if ipStr == "127.0.0.1" || ipStr == "::1" {
		return "Localhost"
	}
	if s == nil {
		return "Unknown"
	}

	s.mu.RLock()
	reader := s.reader
	s.mu.RUnlock()
	if reader == nil {
		return "Unknown"
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "Unknown"
	}

	record, err := reader.Country(ip)
	if err != nil {
		s.logger.Error("GeoIP: lookup error", "ip", ipStr, "error", err)
		return "Unknown"
	}
	if name, ok := record.Country.Names["en"]; ok && name != "" {
		return name
	}
	if record.Country.IsoCode != "" {
		return record.Country.IsoCode
	}
	return "Unknown"
}
