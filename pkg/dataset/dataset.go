// Package dataset reads Lightning Network graph dumps in the format
// produced by `lncli describegraph` and turns them into graph input.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dd0wney/lnrank/pkg/graph"
)

// ErrMalformed is returned when the dump cannot be decoded.
var ErrMalformed = errors.New("malformed graph dump")

// Int64 decodes from a JSON number, a decimal string or null. lnd encodes
// 64-bit integers such as capacity as strings. Values with a fraction or an
// exponent are truncated toward zero; values outside the int64 range are
// rejected with ErrMalformed.
type Int64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: integer %s out of range", ErrMalformed, data)
	}
	if err != nil {
		// Floats such as 1.7e9 or 1.5 truncate toward zero.
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("%w: invalid integer %q", ErrMalformed, data)
		}
		if !(f >= math.MinInt64 && f < math.MaxInt64) {
			return fmt.Errorf("%w: integer %s out of range", ErrMalformed, data)
		}
		v = int64(f)
	}
	*n = Int64(v)
	return nil
}

// Node is a node record from the dump.
type Node struct {
	PubKey     string `json:"pub_key"`
	Alias      string `json:"alias,omitempty"`
	LastUpdate Int64  `json:"last_update"`
}

// Edge is a channel record from the dump.
type Edge struct {
	ChannelID string `json:"channel_id,omitempty"`
	Node1Pub  string `json:"node1_pub"`
	Node2Pub  string `json:"node2_pub"`
	Capacity  Int64  `json:"capacity"`
}

// Dataset is a decoded graph dump.
type Dataset struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Decode reads one JSON document from r.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &ds, nil
}

// GraphInput converts the records into graph builder input.
func (d *Dataset) GraphInput() ([]graph.Node, []graph.Edge) {
	if d == nil {
		return nil, nil
	}
	nodes := make([]graph.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = graph.Node{PubKey: n.PubKey, LastUpdate: int64(n.LastUpdate)}
	}
	edges := make([]graph.Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = graph.Edge{Node1Pub: e.Node1Pub, Node2Pub: e.Node2Pub, Capacity: int64(e.Capacity)}
	}
	return nodes, edges
}

// Aliases maps public keys to their non-empty aliases.
func (d *Dataset) Aliases() map[string]string {
	if d == nil {
		return nil
	}
	out := make(map[string]string)
	for _, n := range d.Nodes {
		if n.Alias != "" {
			out[n.PubKey] = n.Alias
		}
	}
	return out
}
