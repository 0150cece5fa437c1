package service

import (
	"encoding/json"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantIdent string
		wantLat   *float64
		wantLon   *float64
		wantSpeed *float64
		wantTS    string
	}{
		{
			name:      "full record",
			raw:       `{"Ident":"9171006261","PositionLatitude":8.5,"PositionLongitude":124.7,"PositionSpeed":12,"Timestamp":"T1"}`,
			wantIdent: "9171006261",
			wantLat:   ptr(8.5),
			wantLon:   ptr(124.7),
			wantSpeed: ptr(12),
			wantTS:    `"T1"`,
		},
		{
			name:      "numeric epoch timestamp passes through",
			raw:       `{"Ident":"A","Timestamp":1730700000.5}`,
			wantIdent: "A",
			wantTS:    `1730700000.5`,
		},
		{
			name:      "numeric ident",
			raw:       `{"Ident":9171006261}`,
			wantIdent: "9171006261",
		},
		{
			name:      "coordinates as strings",
			raw:       `{"Ident":"A","PositionLatitude":"8.5","PositionLongitude":"124.7"}`,
			wantIdent: "A",
			wantLat:   ptr(8.5),
			wantLon:   ptr(124.7),
		},
		{
			name:      "null fields stay unset",
			raw:       `{"Ident":"A","PositionLatitude":null,"PositionSpeed":null,"Timestamp":null}`,
			wantIdent: "A",
		},
		{
			name:      "mistyped fields stay unset",
			raw:       `{"Ident":"A","PositionLatitude":true,"PositionLongitude":"north","PositionSpeed":{}}`,
			wantIdent: "A",
		},
		{
			name:      "non-finite strings stay unset",
			raw:       `{"Ident":"A","PositionLatitude":"NaN","PositionLongitude":"Inf","PositionSpeed":"-Infinity"}`,
			wantIdent: "A",
		},
		{
			name:      "non-finite mixed with finite",
			raw:       `{"Ident":"A","PositionLatitude":"nan","PositionLongitude":124.7,"PositionSpeed":"+inf"}`,
			wantIdent: "A",
			wantLon:   ptr(124.7),
		},
		{
			name:      "zero speed is set",
			raw:       `{"Ident":"A","PositionSpeed":0}`,
			wantIdent: "A",
			wantSpeed: ptr(0),
		},
		{
			name:    "missing ident",
			raw:     `{"PositionLatitude":8.1}`,
			wantLat: ptr(8.1),
		},
		{
			name: "null ident",
			raw:  `{"Ident":null}`,
		},
		{
			name: "ident of wrong type",
			raw:  `{"Ident":["A"]}`,
		},
		{
			name: "not an object",
			raw:  `[1,2]`,
		},
		{
			name: "malformed",
			raw:  `{"Ident":`,
		},
		{
			name:      "unknown fields ignored",
			raw:       `{"Ident":"A","battery.voltage":12.6,"device.id":99}`,
			wantIdent: "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(json.RawMessage(tt.raw))

			if rec.Ident != tt.wantIdent {
				t.Errorf("got ident %q, want %q", rec.Ident, tt.wantIdent)
			}
			checkFloat(t, "latitude", rec.Latitude, tt.wantLat)
			checkFloat(t, "longitude", rec.Longitude, tt.wantLon)
			checkFloat(t, "speed", rec.Speed, tt.wantSpeed)
			if string(rec.Timestamp) != tt.wantTS {
				t.Errorf("got timestamp %s, want %s", rec.Timestamp, tt.wantTS)
			}
			if string(rec.Raw()) != tt.raw {
				t.Errorf("raw record not preserved: %s", rec.Raw())
			}
		})
	}
}

func checkFloat(t *testing.T, field string, got, want *float64) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s: got %v, want %v", field, got, want)
	case *got != *want:
		t.Errorf("%s: got %v, want %v", field, *got, *want)
	}
}

func TestTelemetryRecord_Moving(t *testing.T) {
	tests := []struct {
		speed *float64
		want  bool
	}{
		{speed: nil, want: false},
		{speed: ptr(0), want: false},
		{speed: ptr(-1), want: false},
		{speed: ptr(0.1), want: true},
	}

	for _, tt := range tests {
		rec := TelemetryRecord{Speed: tt.speed}
		if got := rec.Moving(); got != tt.want {
			t.Errorf("Moving() with speed %v = %v, want %v", tt.speed, got, tt.want)
		}
	}
}
