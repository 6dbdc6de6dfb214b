package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Constraint guards a tool against calls it should not run.
//
// Check must not change any state. Commit is called only after every
// constraint on the tool has accepted the call, so a rejected call leaves
// all counters and sets untouched.
type Constraint interface {
	Check(args map[string]any) error
	Commit(args map[string]any)
}

// CallLimit allows a fixed number of calls over the life of the process
type CallLimit struct {
	mu        sync.Mutex
	remaining int
}

func NewCallLimit(limit int) *CallLimit {
	return &CallLimit{remaining: limit}
}

func (c *CallLimit) Check(args map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remaining <= 0 {
		return ErrCallLimitExceeded
	}
	return nil
}

func (c *CallLimit) Commit(args map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remaining > 0 {
		c.remaining--
	}
}

// Remaining returns how many calls are still allowed
func (c *CallLimit) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// UniqueArgs rejects a call whose arguments match an earlier accepted call
type UniqueArgs struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewUniqueArgs() *UniqueArgs {
	return &UniqueArgs{seen: make(map[string]struct{})}
}

func (u *UniqueArgs) Check(args map[string]any) error {
	key, err := argsKey(args)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.seen[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCall, key)
	}
	return nil
}

func (u *UniqueArgs) Commit(args map[string]any) {
	key, err := argsKey(args)
	if err != nil {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.seen[key] = struct{}{}
}

// argsKey builds a canonical key for an argument map.
// encoding/json writes map keys in sorted order, so equal maps give equal keys.
func argsKey(args map[string]any) (string, error) {
	if len(args) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool arguments: %w", err)
	}
	return string(data), nil
}

// Throttle limits how often tools may be called.
// One Throttle can be shared by several tools to cap their combined rate.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows perMinute calls per minute with a burst of one
func NewThrottle(perMinute int) *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

func (t *Throttle) Check(args map[string]any) error {
	if t.limiter.Tokens() < 1 {
		return ErrRateLimited
	}
	return nil
}

func (t *Throttle) Commit(args map[string]any) {
	t.limiter.Allow()
}
