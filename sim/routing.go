package sim

import (
	"fmt"
	"sort"
)

// RoutingPolicy decides which workstation buffer inspector 1's next C1 goes to.
// b1, b2 and b3 are the current C1 buffer levels at workstations 1, 2 and 3.
// Decide returns ProductNone when every buffer is full; the engine then holds
// the inspector until space frees up.
type RoutingPolicy interface {
	Decide(b1, b2, b3 int) Product
}

// allFull reports whether no C1 buffer can take another component.
func allFull(b1, b2, b3 int) bool {
	return b1 >= BufferCapacity && b2 >= BufferCapacity && b3 >= BufferCapacity
}

// ShortestQueueFirst sends C1 to the emptiest buffer. Ties favor P1, then P2.
type ShortestQueueFirst struct{}

// Decide implements RoutingPolicy for ShortestQueueFirst.
func (ShortestQueueFirst) Decide(b1, b2, b3 int) Product {
	if allFull(b1, b2, b3) {
		return ProductNone
	}
	return shortestFrom(P1, b1, b2, b3)
}

// shortestFrom applies shortest-queue-first with first as the favored product.
// The other two products are checked in cyclic order after first, and the
// last one wins if neither earlier comparison resolves.
func shortestFrom(first Product, b1, b2, b3 int) Product {
	levels := [3]int{b1, b2, b3}
	order := [3]Product{first, first%3 + 1, (first+1)%3 + 1}
	a, b, c := levels[order[0].index()], levels[order[1].index()], levels[order[2].index()]
	switch {
	case a <= b && a <= c:
		return order[0]
	case b <= c:
		return order[1]
	default:
		return order[2]
	}
}

// RotatingPriority is shortest-queue-first with a favored product that rotates
// P1 → P2 → P3 → P1 after every routed component.
// Not safe for concurrent use; each run owns its own instance.
type RotatingPriority struct {
	rank int // 1..3, the product currently favored on ties
}

// NewRotatingPriority returns a policy starting at rank 1 (favoring P1).
func NewRotatingPriority() *RotatingPriority {
	return &RotatingPriority{rank: 1}
}

// Rank returns the product index (1..3) favored by the next decision.
func (rp *RotatingPriority) Rank() int {
	return rp.rank
}

// Decide implements RoutingPolicy for RotatingPriority.
func (rp *RotatingPriority) Decide(b1, b2, b3 int) Product {
	if allFull(b1, b2, b3) {
		return ProductNone
	}
	if rp.rank < 1 || rp.rank > 3 {
		rp.rank = 1
	}
	favored := Product(rp.rank)
	rp.rank = rp.rank%3 + 1
	return shortestFrom(favored, b1, b2, b3)
}

// validRoutingPolicies maps accepted policy names. Empty defaults to shortest-queue.
var validRoutingPolicies = map[string]bool{
	"":                  true,
	"shortest-queue":    true,
	"rotating-priority": true,
}

// IsValidRoutingPolicy returns true if name is a recognized routing policy.
func IsValidRoutingPolicy(name string) bool {
	return validRoutingPolicies[name]
}

// ValidRoutingPolicyNames returns the non-empty policy names, sorted.
func ValidRoutingPolicyNames() []string {
	names := make([]string, 0, len(validRoutingPolicies))
	for n := range validRoutingPolicies {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// NewRoutingPolicy creates a fresh routing policy by name.
// Panics on unrecognized names; callers validate with IsValidRoutingPolicy.
func NewRoutingPolicy(name string) RoutingPolicy {
	if !IsValidRoutingPolicy(name) {
		panic(fmt.Sprintf("unknown routing policy %q", name))
	}
	switch name {
	case "", "shortest-queue":
		return ShortestQueueFirst{}
	case "rotating-priority":
		return NewRotatingPriority()
	default:
		panic(fmt.Sprintf("unhandled routing policy %q", name))
	}
}
