// Package linkcheck decides whether a QR share link is still fresh.
//
// Links carry their issuance instant in the "t" query parameter as Unix epoch
// seconds. Links without the parameter are direct visits and always pass.
package linkcheck

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampParam is the query parameter holding the issuance time
	TimestampParam = "t"

	// DefaultMaxAge is the freshness window used when none is configured
	DefaultMaxAge = 60 * time.Second
)

// Reasons reported alongside a validation result
const (
	ReasonDirectAccess     = "Direct access (no QR validation required)"
	ReasonInvalidLink      = "Invalid link"
	ReasonInvalidTimestamp = "Invalid QR code timestamp"
	ReasonFutureTimestamp  = "QR code timestamp is in the future. Please scan the code again."
)

// Result is the outcome of validating a link
type Result struct {
	Valid         bool          `json:"is_valid"`
	Reason        string        `json:"reason,omitempty"`
	TimeRemaining time.Duration `json:"-"`
	Timestamped   bool          `json:"timestamped"`
}

// RemainingSeconds returns the whole seconds left in the freshness window
func (r Result) RemainingSeconds() int64 {
	return int64(r.TimeRemaining / time.Second)
}

// Validate reports whether rawURL is fresh at now given maxAge.
// It never fails: malformed input produces an invalid Result.
func Validate(rawURL string, maxAge time.Duration, now time.Time) Result {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{Valid: false, Reason: ReasonInvalidLink}
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil && !values.Has(TimestampParam) && rawHasParam(u.RawQuery, TimestampParam) {
		// t is present but undecodable
		return Result{Valid: false, Reason: ReasonInvalidTimestamp, Timestamped: true}
	}
	if !values.Has(TimestampParam) {
		return Result{Valid: true, Reason: ReasonDirectAccess}
	}

	issuedAt, err := strconv.ParseInt(values.Get(TimestampParam), 10, 64)
	if err != nil {
		return Result{Valid: false, Reason: ReasonInvalidTimestamp, Timestamped: true}
	}

	age := now.Unix() - issuedAt
	window := int64(maxAge / time.Second)

	if age < 0 {
		return Result{Valid: false, Reason: ReasonFutureTimestamp, Timestamped: true}
	}
	if age > window {
		return Result{
			Valid:       false,
			Reason:      expiredReason(age, window),
			Timestamped: true,
		}
	}

	return Result{
		Valid:         true,
		TimeRemaining: time.Duration(window-age) * time.Second,
		Timestamped:   true,
	}
}

func expiredReason(age, window int64) string {
	return fmt.Sprintf("QR code expired %ds ago (valid for %ds). Please scan the code again.", age-window, window)
}

// rawHasParam reports whether any raw query segment names key, escaped or not
func rawHasParam(rawQuery, key string) bool {
	segments := strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' || r == ';' })
	for _, segment := range segments {
		name, _, _ := strings.Cut(segment, "=")
		if name == key {
			return true
		}
		if unescaped, err := url.QueryUnescape(name); err == nil && unescaped == key {
			return true
		}
	}
	return false
}
