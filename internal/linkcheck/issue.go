package linkcheck

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Issue returns target with the issuance time embedded as the t parameter.
// Any existing t value is replaced.
func Issue(target string, now time.Time) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid target URL: only HTTP and HTTPS are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid target URL: missing host")
	}

	q := u.Query()
	q.Set(TimestampParam, strconv.FormatInt(now.Unix(), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
