// Package geoip resolves request origins to ISO country codes, used by the
// locale middleware to pick message languages for error responses.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Lookup resolves an IP address to an upper-case ISO country code. An empty
// code with nil error means the database has no record for the address.
type Lookup func(ip string) (string, error)

// Open loads the MaxMind database at path and returns a lookup plus a close
// function. An empty path disables lookups: both returns are nil.
func Open(path string) (Lookup, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("geoip: open database: %w", err)
	}
	lookup := func(ip string) (string, error) {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return "", fmt.Errorf("geoip: invalid ip %q", ip)
		}
		record, err := reader.Country(parsed)
		if err != nil {
			return "", fmt.Errorf("geoip: lookup country: %w", err)
		}
		if record == nil {
			return "", nil
		}
		return record.Country.IsoCode, nil
	}
	return lookup, reader.Close, nil
}
