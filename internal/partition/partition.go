package partition

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// Range is a half-open interval [Lower, Upper) over the shard key space.
// Either bound may be nil, meaning the range is unbounded on that side
// (-infinity for Lower, +infinity for Upper). Bounds are raw BSON documents
// exactly as reported by the cluster metadata, e.g. {"_id": 42}.
//
// A Range is immutable once constructed; callers must not modify the
// underlying byte slices.
type Range struct {
	Lower bson.Raw // Inclusive lower bound, nil = unbounded
	Upper bson.Raw // Exclusive upper bound, nil = unbounded
}

// Unbounded is the full key space, used for degenerate single-partition plans.
var Unbounded = Range{}

// NewRange builds a range from raw bound documents. Pass nil for an
// unbounded side.
func NewRange(lower, upper bson.Raw) Range {
	return Range{Lower: lower, Upper: upper}
}

// Equal reports whether two ranges have byte-identical bounds, with nil
// (unbounded) only equal to nil.
func (r Range) Equal(other Range) bool {
	return bytes.Equal(r.Lower, other.Lower) && bytes.Equal(r.Upper, other.Upper)
}

// IsUnbounded reports whether the range covers the entire key space.
func (r Range) IsUnbounded() bool {
	return r.Lower == nil && r.Upper == nil
}

// MarshalJSON renders the bounds as relaxed extended JSON so downstream
// engines can rebuild the per-partition filter (key >= lower AND key < upper,
// omitting a side when null).
func (r Range) MarshalJSON() ([]byte, error) {
	lower, err := boundJSON(r.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := boundJSON(r.Upper)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Lower json.RawMessage `json:"lower"`
		Upper json.RawMessage `json:"upper"`
	}{lower, upper})
}

func boundJSON(doc bson.Raw) (json.RawMessage, error) {
	if doc == nil {
		return json.RawMessage("null"), nil
	}
	out, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

// Partition is one schedulable unit of a parallel collection read: a key
// range plus an advisory list of hosts that hold the data locally.
//
// Partitions in a plan are numbered contiguously from 0 in the order the
// underlying metadata was enumerated. PreferredHosts may be empty, which
// means "no placement preference".
type Partition struct {
	Index          int      `json:"index"`          // Position in the plan, starting at 0
	PreferredHosts []string `json:"preferredHosts"` // "host:port" strings, advisory only
	Range          Range    `json:"range"`          // Key range read by this partition
}

// Whole is the degenerate single-partition plan covering the full collection
// with the given host preference. It is always a valid plan on its own.
func Whole(hosts []string) Partition {
	return Partition{Index: 0, PreferredHosts: hosts, Range: Unbounded}
}
