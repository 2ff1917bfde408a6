package service

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

// dateOf drops the clock part of a UTC-midnight date.
func dateOf(t time.Time) datatypes.Date {
	return datatypes.Date(t)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = trim(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
