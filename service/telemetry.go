package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// TelemetryRecord is one positional report from a tracker, as pushed by the
// Flespi stream. Optional fields are nil when the report omits them.
type TelemetryRecord struct {
	Ident     string
	Latitude  *float64
	Longitude *float64
	Speed     *float64
	// Timestamp is passed through untouched; devices send strings or epochs.
	Timestamp json.RawMessage

	raw json.RawMessage
}

// Moving reports whether the tracker had a positive speed.
func (r TelemetryRecord) Moving() bool {
	return r.Speed != nil && *r.Speed > 0
}

// HasPosition reports whether both coordinates are set.
func (r TelemetryRecord) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Raw returns the record as received.
func (r TelemetryRecord) Raw() json.RawMessage {
	return r.raw
}

// Normalize extracts the typed fields of one raw telemetry object. It never
// fails: absent, null or mistyped fields are left unset.
func Normalize(raw json.RawMessage) TelemetryRecord {
	rec := TelemetryRecord{raw: raw}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rec
	}

	rec.Ident = identField(fields["Ident"])
	rec.Latitude = numberField(fields["PositionLatitude"])
	rec.Longitude = numberField(fields["PositionLongitude"])
	rec.Speed = numberField(fields["PositionSpeed"])
	if ts, ok := fields["Timestamp"]; ok && !isNull(ts) {
		rec.Timestamp = ts
	}
	return rec
}

func identField(v json.RawMessage) string {
	if len(v) == 0 || isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	// Some firmware sends the IMEI as a bare number.
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

// numberField accepts a JSON number or a numeric string. NaN and infinities
// are left unset; they cannot be encoded in the outgoing event.
func numberField(v json.RawMessage) *float64 {
	if len(v) == 0 || isNull(v) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
