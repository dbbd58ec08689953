// Package motor implements joint-level motor control: the per-joint limit
// cache fetched from the robot and the dispatcher that clamps and forwards
// joint command batches over the streaming channel.
package motor

import (
	"context"
	"sync"

	"github.com/fftai/gros-client-go/internal/log"
	"github.com/fftai/gros-client-go/pkg/transport"
)

// LimitPath is the control-plane path serving the joint limit table.
const LimitPath = "/robot/motor/limit/list"

// JointLimit is the robot-reported allowable range for one joint. IP is
// the motor's transport address; it never appears in an outbound command.
type JointLimit struct {
	No          string  `json:"no"`
	Orientation string  `json:"orientation"`
	MinAngle    float64 `json:"min_angle"`
	MaxAngle    float64 `json:"max_angle"`
	IP          string  `json:"ip"`
}

// limitKey is the compound identity of a joint: at most one limit record
// exists per key.
type limitKey struct {
	no          string
	orientation string
}

// ControlCaller is the slice of the transport client the cache needs.
type ControlCaller interface {
	Call(ctx context.Context, spec transport.CallSpec) (*transport.Response, error)
}

// LimitCache holds the authoritative per-joint range table for a single
// robot connection. It starts empty and is filled wholesale by one
// background fetch; an empty cache means "not yet loaded", never "robot
// has no joints". There is no refresh path: the table is fetched once per
// connection.
type LimitCache struct {
	mu     sync.RWMutex
	limits map[limitKey]JointLimit
}

// NewLimitCache returns an empty cache.
func NewLimitCache() *LimitCache {
	return &LimitCache{limits: make(map[limitKey]JointLimit)}
}

// Populate fetches the limit table and replaces the cache contents. A
// fetch failure is logged and leaves the cache empty; it never propagates,
// so constructing a robot connection cannot fail on it.
func (c *LimitCache) Populate(ctx context.Context, caller ControlCaller) {
	resp, err := caller.Call(ctx, transport.CallSpec{
		Method: "GET",
		Path:   LimitPath,
	})
	if err != nil {
		log.Warn("joint limit fetch failed, cache stays empty", "err", err)
		return
	}

	var limits []JointLimit
	if err := resp.ParseData(&limits); err != nil {
		log.Warn("joint limit table unparsable, cache stays empty", "err", err)
		return
	}

	c.Replace(limits)
	log.Debug("joint limit cache populated", "joints", len(limits))
}

// Replace swaps the cache contents wholesale.
func (c *LimitCache) Replace(limits []JointLimit) {
	table := make(map[limitKey]JointLimit, len(limits))
	for _, l := range limits {
		table[limitKey{l.No, l.Orientation}] = l
	}
	c.mu.Lock()
	c.limits = table
	c.mu.Unlock()
}

// Find looks up the limit record for a joint by its compound key.
func (c *LimitCache) Find(no, orientation string) (JointLimit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.limits[limitKey{no, orientation}]
	return l, ok
}

// Ready reports whether the cache has been populated.
func (c *LimitCache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.limits) > 0
}

// Len returns the number of cached limit records.
func (c *LimitCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.limits)
}
