package service

import "math"

// DefaultTolerance is the blacklist window half-width in degrees (about 11 m).
const DefaultTolerance = 0.0001

// Zone is a coordinate whose nearby fixes are discarded, e.g. GPS drift
// around a depot.
type Zone struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Tolerance float64 `json:"tolerance,omitempty"`
}

func (z Zone) tolerance() float64 {
	if z.Tolerance > 0 {
		return z.Tolerance
	}
	return DefaultTolerance
}

// Blacklist is immutable after construction and safe for concurrent use.
type Blacklist struct {
	zones []Zone
}

func NewBlacklist(zones []Zone) *Blacklist {
	return &Blacklist{zones: append([]Zone(nil), zones...)}
}

// Match returns the first zone whose square tolerance window contains the
// record. Records without a position never match.
func (b *Blacklist) Match(rec TelemetryRecord) (Zone, bool) {
	if b == nil || !rec.HasPosition() {
		return Zone{}, false
	}
	lat, lon := *rec.Latitude, *rec.Longitude
	for _, z := range b.zones {
		eps := z.tolerance()
		if math.Abs(z.Latitude-lat) < eps && math.Abs(z.Longitude-lon) < eps {
			return z, true
		}
	}
	return Zone{}, false
}

func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.zones)
}
