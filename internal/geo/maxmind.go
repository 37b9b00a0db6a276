package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindResolver resolves locations from a local GeoLite2/GeoIP2 City
// database. Avoids any network dependency; the mmdb path comes from
// configuration.
type MaxMindResolver struct {
	db *geoip2.Reader
}

// NewMaxMindResolver opens the City database at path.
func NewMaxMindResolver(path string) (*MaxMindResolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &MaxMindResolver{db: db}, nil
}

// Resolve looks up ip in the local database.
func (r *MaxMindResolver) Resolve(_ context.Context, ip string) (*Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid ip address %q", ip)
	}

	record, err := r.db.City(parsed)
	if err != nil {
		return nil, fmt.Errorf("geoip city lookup: %w", err)
	}

	loc := &Location{Country: record.Country.Names["en"]}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc, nil
}

// Close releases the underlying database handle.
func (r *MaxMindResolver) Close() error {
	return r.db.Close()
}
