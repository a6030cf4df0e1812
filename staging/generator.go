package staging

import (
	"fmt"
	"math/rand"
	"sync"
)

// DefaultGroupCapacity is how many teams a stage group holds.
const DefaultGroupCapacity = 12

// WildcardGroupName is given to an undersized trailing chunk: when the pool
// does not divide evenly, the leftover teams play a wildcard group instead of
// a lettered one.
const WildcardGroupName = "Wildcard"

// GroupAssignment is one generated group before persistence: a name and the
// teams placed in it.
type GroupAssignment struct {
	Name    string
	TeamIDs []int
}

// Generator partitions an eligibility pool into stage groups. The random
// source is injected so callers can seed it deterministically under test.
// One instance is shared by every tournament, so draws are serialized with a
// mutex: rand.Rand is not safe for concurrent use.
type Generator struct {
	capacity int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(capacity int, src rand.Source) *Generator {
	if capacity <= 0 {
		capacity = DefaultGroupCapacity
	}
	return &Generator{
		capacity: capacity,
		rng:      rand.New(src),
	}
}

// Partition shuffles the pool uniformly and slices it into consecutive groups
// of up to capacity teams. Every team in the pool lands in exactly one group.
// Full chunks are named "<stage> Group <Letter>" with the letter cycling
// A, B, C, ... by chunk index; a short trailing chunk becomes the wildcard
// group. An empty pool yields no groups.
func (g *Generator) Partition(stage string, teamIDs []int) []GroupAssignment {
	pool := make([]int, len(teamIDs))
	copy(pool, teamIDs)

	// Fisher-Yates: walk from the last index down, swapping each element with
	// a uniformly chosen one at or below it.
	g.mu.Lock()
	for i := len(pool) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	g.mu.Unlock()

	groups := make([]GroupAssignment, 0, (len(pool)+g.capacity-1)/g.capacity)
	for i := 0; i < len(pool); i += g.capacity {
		end := i + g.capacity
		if end > len(pool) {
			end = len(pool)
		}
		chunk := pool[i:end]

		name := fmt.Sprintf("%s Group %c", stage, 'A'+rune((i/g.capacity)%26))
		if len(chunk) < g.capacity {
			name = WildcardGroupName
		}

		groups = append(groups, GroupAssignment{Name: name, TeamIDs: chunk})
	}
	return groups
}
