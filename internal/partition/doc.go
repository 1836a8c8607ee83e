// Package partition defines the value types a partition plan is made of.
//
// # Overview
//
// A plan is an ordered slice of Partition values. Each partition pairs a
// half-open key range with an advisory host list, and the slice as a whole
// covers the collection's full shard key space:
//
//	┌───────────────────────────────────────────────┐
//	│                 Partition plan                │
//	├───────────────┬───────────────┬───────────────┤
//	│ 0: (-inf, k1) │ 1: [k1, k2)   │ 2: [k2, +inf) │
//	│ hosts: a,b    │ hosts: c      │ hosts: a,b    │
//	└───────────────┴───────────────┴───────────────┘
//
// Bounds are kept as raw BSON documents so that whatever key shape the
// cluster reports (single field, compound key, MinKey/MaxKey sentinels)
// round-trips to the execution engine untouched. A nil bound stands for
// the unbounded side of the key space.
//
// Values in this package are plain data: constructed once by the planner,
// never mutated, no cleanup obligations.
package partition
