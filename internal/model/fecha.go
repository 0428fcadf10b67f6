package model

import (
	"strings"
	"time"
)

const (
	// LayoutFechaHora is the wall-clock timestamp the remote API stores for
	// ventas and movimientos: local time, no offset.
	LayoutFechaHora = "2006-01-02T15:04:05"
	LayoutFecha     = "2006-01-02"
)

// FechaHoraLocal formats t in its own location without converting to UTC.
func FechaHoraLocal(t time.Time) string {
	return t.Format(LayoutFechaHora)
}

// FechaLocal formats the calendar day of t in its own location.
func FechaLocal(t time.Time) string {
	return t.Format(LayoutFecha)
}

// ParseFechaRemota parses the date strings the remote API returns
// (RFC 3339 with offset, local timestamp without offset, or a bare date) and
// returns the instant in loc. Zone-less values are taken as already local.
func ParseFechaRemota(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", LayoutFechaHora, "2006-01-02 15:04:05", LayoutFecha} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
