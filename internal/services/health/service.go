package health

import (
	"context"
	"sort"
	"time"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Service runs registered dependency checks.
type Service struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

// Report is the health payload. OK is false when any check failed.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewService constructs a health service with no checks.
func NewService() *Service {
	return &Service{checks: map[string]CheckFunc{}, timeout: 2 * time.Second}
}

// Register adds a named check. A nil check is ignored.
func (s *Service) Register(name string, check CheckFunc) {
	if check == nil {
		return
	}
	s.checks[name] = check
}

// Status runs every check with a shared timeout.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if len(s.checks) == 0 {
		return report
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
