package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidEdge = errors.New("invalid edge")
	ErrEmptyGraph  = errors.New("graph is empty")
)

// Reasons attached to an EdgeError.
const (
	ReasonSelfLoop     = "self-loop"
	ReasonUnknownNode1 = "unknown node1"
	ReasonUnknownNode2 = "unknown node2"
	ReasonUnknownBoth  = "unknown endpoints"
)

// EdgeError describes why an edge could not be added to the graph.
type EdgeError struct {
	Op     string // Operation that rejected the edge (e.g. "Build")
	Index  int    // Position of the edge in the input slice
	Node1  string
	Node2  string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *EdgeError) Error() string {
	return fmt.Sprintf("%s edge #%d (%s, %s): %s: %v", e.Op, e.Index, e.Node1, e.Node2, e.Reason, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *EdgeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *EdgeError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func newEdgeError(index int, edge Edge, reason string) *EdgeError {
	return &EdgeError{
		Op:     "Build",
		Index:  index,
		Node1:  edge.Node1Pub,
		Node2:  edge.Node2Pub,
		Reason: reason,
		Cause:  ErrInvalidEdge,
	}
}
