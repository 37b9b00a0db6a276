// Package geo provides optional best-effort IP geolocation for the
// similarity scorer. Lookups are advisory: failures are swallowed by the
// caller and never block or fail a scoring computation.
package geo

import "context"

// Location is a coarse lookup result. Either field may be empty.
type Location struct {
	Country string
	Region  string
}

// Resolver maps an IP address to a coarse location.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (*Location, error)
}
