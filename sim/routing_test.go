package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortestQueueFirst_Decide(t *testing.T) {
	tests := []struct {
		name       string
		b1, b2, b3 int
		want       Product
	}{
		{"P1 strictly shortest", 0, 1, 1, P1},
		{"only P3 has room", 2, 2, 1, P3},
		{"all full", 2, 2, 2, ProductNone},
		{"all empty favors P1", 0, 0, 0, P1},
		{"P2 and P3 tied favors P2", 1, 0, 0, P2},
		{"P1 ties P2 favors P1", 1, 1, 2, P1},
		{"P3 strictly shortest", 1, 1, 0, P3},
		{"P2 strictly shortest", 2, 0, 1, P2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortestQueueFirst{}.Decide(tt.b1, tt.b2, tt.b3))
		})
	}
}

func TestRotatingPriority_EmptyBuffers_Rotates(t *testing.T) {
	// GIVEN a fresh policy (rank 1) and all buffers empty
	rp := NewRotatingPriority()
	assert.Equal(t, 1, rp.Rank())

	// WHEN deciding four times
	// THEN the favored product rotates P1, P2, P3, P1
	assert.Equal(t, P1, rp.Decide(0, 0, 0))
	assert.Equal(t, 2, rp.Rank())
	assert.Equal(t, P2, rp.Decide(0, 0, 0))
	assert.Equal(t, 3, rp.Rank())
	assert.Equal(t, P3, rp.Decide(0, 0, 0))
	assert.Equal(t, 1, rp.Rank())
	assert.Equal(t, P1, rp.Decide(0, 0, 0))
}

func TestRotatingPriority_AllFull_DoesNotAdvance(t *testing.T) {
	rp := NewRotatingPriority()
	assert.Equal(t, ProductNone, rp.Decide(2, 2, 2))
	assert.Equal(t, 1, rp.Rank())
}

func TestRotatingPriority_AdvancesEvenWhenFavoredLoses(t *testing.T) {
	// GIVEN rank 1 but P1's buffer is the fullest
	rp := NewRotatingPriority()

	// WHEN deciding
	got := rp.Decide(2, 1, 0)

	// THEN the shortest queue wins and the rank still advances
	assert.Equal(t, P3, got)
	assert.Equal(t, 2, rp.Rank())
}

func TestRotatingPriority_PerRankTieBreaks(t *testing.T) {
	tests := []struct {
		name       string
		rank       int
		b1, b2, b3 int
		want       Product
	}{
		// rank 2 compares P3 before P1
		{"rank 2 favored wins tie", 2, 1, 1, 1, P2},
		{"rank 2 P3 ties P1", 2, 0, 1, 0, P3},
		{"rank 2 P1 strictly shortest", 2, 0, 1, 1, P1},
		// rank 3 compares P1 before P2
		{"rank 3 favored wins tie", 3, 1, 1, 1, P3},
		{"rank 3 P1 ties P2", 3, 0, 0, 1, P1},
		{"rank 3 P2 strictly shortest", 3, 1, 0, 1, P2},
		// rank 1 is shortest-queue-first
		{"rank 1 P2 ties P3", 1, 2, 1, 1, P2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := &RotatingPriority{rank: tt.rank}
			assert.Equal(t, tt.want, rp.Decide(tt.b1, tt.b2, tt.b3))
		})
	}
}

func TestRotatingPriority_MatchesShortestQueueAtRank1(t *testing.T) {
	// Every rank-1 decision agrees with ShortestQueueFirst.
	for b1 := 0; b1 <= 2; b1++ {
		for b2 := 0; b2 <= 2; b2++ {
			for b3 := 0; b3 <= 2; b3++ {
				rp := NewRotatingPriority()
				assert.Equal(t, ShortestQueueFirst{}.Decide(b1, b2, b3), rp.Decide(b1, b2, b3),
					"buffers (%d,%d,%d)", b1, b2, b3)
			}
		}
	}
}

func TestNewRoutingPolicy_ValidNames(t *testing.T) {
	assert.IsType(t, ShortestQueueFirst{}, NewRoutingPolicy(""))
	assert.IsType(t, ShortestQueueFirst{}, NewRoutingPolicy("shortest-queue"))
	assert.IsType(t, &RotatingPriority{}, NewRoutingPolicy("rotating-priority"))
}

func TestNewRoutingPolicy_FreshInstances(t *testing.T) {
	// Each run must get its own rotation state.
	a := NewRoutingPolicy("rotating-priority").(*RotatingPriority)
	b := NewRoutingPolicy("rotating-priority").(*RotatingPriority)
	a.Decide(0, 0, 0)
	assert.Equal(t, 2, a.Rank())
	assert.Equal(t, 1, b.Rank())
}

func TestNewRoutingPolicy_UnknownName_Panics(t *testing.T) {
	assert.Panics(t, func() { NewRoutingPolicy("round-robin") })
}

func TestValidRoutingPolicyNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"rotating-priority", "shortest-queue"}, ValidRoutingPolicyNames())
	assert.True(t, IsValidRoutingPolicy("shortest-queue"))
	assert.False(t, IsValidRoutingPolicy("SHORTEST-QUEUE"))
}
