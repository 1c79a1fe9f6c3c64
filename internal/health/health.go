package health

import (
	"context"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check is one named dependency probe.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.CheckName }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// Result is the outcome of a single check.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Checker runs registered dependency checks concurrently.
type Checker struct {
	mu     sync.RWMutex
	checks []Check
}

func NewChecker() *Checker {
	return &Checker{checks: make([]Check, 0)}
}

func (hc *Checker) Register(check Check) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, check)
}

// Check probes every registered dependency and returns the per-check
// results keyed by name.
func (hc *Checker) Check(ctx context.Context) map[string]Result {
	hc.mu.RLock()
	checks := make([]Check, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	results := make(map[string]Result)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, c := range checks {
		wg.Add(1)
		go func(ch Check) {
			defer wg.Done()
			start := time.Now()
			res := Result{Name: ch.Name(), Status: StatusHealthy}
			if err := ch.Check(ctx); err != nil {
				res.Status = StatusUnhealthy
				res.Message = err.Error()
			}
			res.Duration = time.Since(start)
			mu.Lock()
			results[ch.Name()] = res
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return results
}

// Overall reduces per-check results to a single status.
func (hc *Checker) Overall(results map[string]Result) Status {
	for _, r := range results {
		if r.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}
