package service

import (
	"fmt"
	"time"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/linkcheck"
)

// linkService implements LinkService
type linkService struct {
	maxAge   time.Duration
	now      func() time.Time
	recorder LinkRecorder
}

// NewLinkService creates a link service enforcing maxAge. recorder may be nil.
func NewLinkService(maxAge time.Duration, recorder LinkRecorder, now func() time.Time) LinkService {
	if maxAge <= 0 {
		maxAge = linkcheck.DefaultMaxAge
	}
	if now == nil {
		now = time.Now
	}
	return &linkService{maxAge: maxAge, now: now, recorder: recorder}
}

// IssueLink stamps target with the current time
func (s *linkService) IssueLink(target string) (*domain.QRLinkResponse, error) {
	issuedAt := s.now().Truncate(time.Second)
	link, err := linkcheck.Issue(target, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	return &domain.QRLinkResponse{
		URL:       link,
		IssuedAt:  issuedAt.UTC(),
		ExpiresAt: issuedAt.Add(s.maxAge).UTC(),
	}, nil
}

// ValidateLink checks rawURL against the configured window
func (s *linkService) ValidateLink(rawURL string) linkcheck.Result {
	res := linkcheck.Validate(rawURL, s.maxAge, s.now())
	if s.recorder != nil {
		s.recorder.LinkValidated(outcome(res))
	}
	return res
}

func outcome(res linkcheck.Result) string {
	switch {
	case res.Valid && !res.Timestamped:
		return "direct"
	case res.Valid:
		return "valid"
	default:
		return "rejected"
	}
}
