// Package conn owns client acquisition, pooling, and release for the
// planner.
//
// # Overview
//
// The planner touches the cluster through exactly two kinds of connection:
// one cluster-wide client per planning call, and occasionally one direct
// single-shard client for the split-point fallback. Both flow through the
// Provider:
//
//	Acquire(hosts)      ──┐
//	                      ├──> refcounted pool, keyed by host set
//	AcquireHost(host)   ──┘         │
//	                                │ Release(handle, idleHint)
//	                                ▼
//	               idle timer ──> Disconnect
//
// Releasing does not disconnect immediately: the client lingers for the
// caller-supplied idle hint so consecutive planning calls against the same
// cluster reuse it. Re-acquiring during the idle window cancels the
// teardown.
package conn
