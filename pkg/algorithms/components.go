package algorithms

import (
	"github.com/dd0wney/lnrank/pkg/graph"
)

// Components labels the connected components of a graph. Labels are dense
// and assigned in order of each component's lowest node index.
type Components struct {
	Label []int32
	Sizes []int
}

// ConnectedComponents finds all connected components with one BFS per
// unvisited node.
func ConnectedComponents(g graph.Adjacency) Components {
	n := g.Len()
	c := Components{Label: make([]int32, n)}
	for i := range c.Label {
		c.Label[i] = -1
	}

	queue := make([]int32, 0, n)
	for start := 0; start < n; start++ {
		if c.Label[start] >= 0 {
			continue
		}

		id := int32(len(c.Sizes))
		size := 0
		c.Label[start] = id
		queue = append(queue[:0], int32(start))

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			size++
			for _, w := range g.Neighbors(int(v)) {
				if c.Label[w] < 0 {
					c.Label[w] = id
					queue = append(queue, w)
				}
			}
		}
		c.Sizes = append(c.Sizes, size)
	}
	return c
}

// Count returns the number of components.
func (c Components) Count() int {
	return len(c.Sizes)
}

// SizeOf returns the size of the component containing node i.
func (c Components) SizeOf(i int) int {
	return c.Sizes[c.Label[i]]
}

// Largest returns the size of the biggest component, or 0 for an empty graph.
func (c Components) Largest() int {
	largest := 0
	for _, s := range c.Sizes {
		if s > largest {
			largest = s
		}
	}
	return largest
}
