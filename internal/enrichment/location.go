package enrichment

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location is the result of an IP geolocation lookup.
type Location struct {
	City     string
	Region   string
	Country  string
	TimeZone string
}

// Resolver maps a source IP address to a location. A nil result means the
// address could not be resolved; that is never an error for the pipeline.
type Resolver interface {
	Resolve(ip string) *Location
}

// GeoIPResolver resolves addresses against a local MaxMind city database.
type GeoIPResolver struct {
	reader *geoip2.Reader
}

func NewGeoIPResolver(databasePath string) (*GeoIPResolver, error) {
	reader, err := geoip2.Open(databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &GeoIPResolver{reader: reader}, nil
}

func (r *GeoIPResolver) Resolve(ip string) *Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}

	record, err := r.reader.City(parsed)
	if err != nil || record == nil || record.Country.IsoCode == "" {
		return nil
	}

	loc := &Location{
		City:     record.City.Names["en"],
		Country:  record.Country.IsoCode,
		TimeZone: record.Location.TimeZone,
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].IsoCode
	}
	return loc
}

func (r *GeoIPResolver) Close() error {
	return r.reader.Close()
}
