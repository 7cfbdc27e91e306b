// Package geoip supplies the client location the edge runtime attaches to
// inbound requests.
package geoip

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/patrickwarner/edgeads/internal/edge"
)

var _ edge.Locator = (*Locator)(nil)

// Locator resolves client IPs to ISO country codes from a MaxMind database
// or, for local runs, a JSON list of {"net","country"} ranges.
type Locator struct {
	reader *geoip2.Reader
	ranges []countryRange
	logger *zap.Logger
}

type countryRange struct {
	network *net.IPNet
	country string
}

// Open loads path as a MaxMind database, falling back to the JSON range
// format. Invalid ranges are skipped. When several ranges contain an address
// the most specific one wins.
func Open(path string, logger *zap.Logger) (*Locator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Locator{logger: logger.Named("geoip")}

	reader, dbErr := geoip2.Open(path)
	if dbErr == nil {
		l.reader = reader
		l.logger.Info("loaded maxmind database", zap.String("path", path))
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db %s: %w", path, dbErr)
	}
	var entries []struct {
		Net     string `json:"net"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("open geoip db %s: not a maxmind database (%v) or json range list (%v)", path, dbErr, err)
	}

	for _, e := range entries {
		_, network, err := net.ParseCIDR(e.Net)
		if err != nil || e.Country == "" {
			l.logger.Warn("skipping geoip range", zap.String("net", e.Net), zap.String("country", e.Country))
			continue
		}
		l.ranges = append(l.ranges, countryRange{network: network, country: strings.ToUpper(e.Country)})
	}
	sort.SliceStable(l.ranges, func(i, j int) bool {
		oi, _ := l.ranges[i].network.Mask.Size()
		oj, _ := l.ranges[j].network.Mask.Size()
		return oi > oj
	})
	l.logger.Info("loaded geoip ranges", zap.String("path", path), zap.Int("ranges", len(l.ranges)))
	return l, nil
}

// Country implements edge.Locator. It returns "" for unknown addresses and
// on a nil Locator.
func (l *Locator) Country(ip net.IP) string {
	if l == nil || ip == nil {
		return ""
	}
	if l.reader != nil {
		rec, err := l.reader.Country(ip)
		if err != nil {
			l.logger.Debug("geoip lookup failed", zap.String("ip", ip.String()), zap.Error(err))
			return ""
		}
		return rec.Country.IsoCode
	}
	for _, r := range l.ranges {
		if r.network.Contains(ip) {
			return r.country
		}
	}
	return ""
}

// Close releases the MaxMind reader, if any.
func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
