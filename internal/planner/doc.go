// Package planner computes partition plans for parallel collection reads.
//
// # Overview
//
// A planning call classifies the target collection once and dispatches to
// one of two discovery strategies:
//
//	ComputePartitions
//	      │ collStats: sharded?
//	      ├── yes ──> chunk catalog ──> one partition per chunk
//	      │             │ any failure
//	      │             └──> single partition, all seed hosts
//	      └── no ───> splitVector (routed)
//	                    │ command rejected by router
//	                    └──> splitVector (direct to primary shard)
//	                           │ still failing
//	                           └──> single partition, no host preference
//
// Every anticipated failure class resolves inside these fallback tiers, so
// a planning call degrades parallelism but never aborts the read job. The
// only error ComputePartitions returns is a failure to acquire the cluster
// client in the first place.
//
// # Resource discipline
//
// The cluster client is acquired once per call and released with the
// configured idle hint when planning finishes. The shard-direct tier is the
// single extra acquisition; it is scoped to that tier and released on every
// exit path.
package planner
