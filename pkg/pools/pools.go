// Package pools provides object pooling for reducing GC pressure.
//
// The centrality engine runs one Brandes pass per simulated edge, each of
// which needs several node-indexed scratch slices. Pooling them keeps the
// simulation loop from reallocating O(V) memory per trial:
//
//   - SlicePool: power-of-two size-class pooling for slices of any element type
//   - Int32s / Float64s: default pools for BFS queues, distances and path counts
package pools
