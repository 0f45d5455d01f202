package attendance

import (
	"context"
	"sync"
	"time"

	"trainingportal/internal/api"
)

// DefaultScanCooldown is how long the scanner stays disarmed after a failed
// submission before it accepts another code.
const DefaultScanCooldown = 2 * time.Second

// Scanner gates QR-driven check-in submissions. A scan disarms the scanner
// while the request is in flight; a failure re-arms it after the cooldown
// instead of locking it permanently, a success leaves it disarmed because the
// student is done.
type Scanner struct {
	mu       sync.Mutex
	cooldown time.Duration
	rearmAt  time.Time
	done     bool
	now      func() time.Time
}

// NewScanner creates a scanner; cooldown <= 0 uses DefaultScanCooldown.
func NewScanner(cooldown time.Duration) *Scanner {
	if cooldown <= 0 {
		cooldown = DefaultScanCooldown
	}
	return &Scanner{cooldown: cooldown, now: time.Now}
}

// Armed reports whether a new scan would be accepted.
func (s *Scanner) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armedLocked()
}

func (s *Scanner) armedLocked() bool {
	return !s.done && !s.now().Before(s.rearmAt)
}

// Submit runs one scanned code through the lifecycle. While a cooldown is
// pending the code is dropped with a ValidationError so the screen can keep
// the camera view untouched.
func (s *Scanner) Submit(ctx context.Context, lc *Lifecycle, code string) error {
	s.mu.Lock()
	if !s.armedLocked() {
		s.mu.Unlock()
		return &api.ValidationError{Message: "scanner cooling down"}
	}
	// Disarm for the duration of the request.
	s.rearmAt = s.now().Add(s.cooldown)
	s.mu.Unlock()

	err := lc.CheckIn(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.done = true
		return nil
	}
	s.rearmAt = s.now().Add(s.cooldown)
	return err
}
