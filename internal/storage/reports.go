package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const reportKeyPrefix = "donors-"

// ReportKey names a donor export that stops being downloadable at expiresAt.
// The expiry is part of the key so every backend can enforce it.
func ReportKey(expiresAt time.Time) string {
	return fmt.Sprintf("%s%d-%s.xlsx", reportKeyPrefix, expiresAt.Unix(), uuid.NewString())
}

// ReportExpiry returns the expiry embedded by ReportKey. ok is false for keys
// that were not produced by ReportKey.
func ReportExpiry(key string) (expiresAt time.Time, ok bool) {
	rest, found := strings.CutPrefix(key, reportKeyPrefix)
	if !found {
		return time.Time{}, false
	}
	stamp, _, found := strings.Cut(rest, "-")
	if !found {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}
