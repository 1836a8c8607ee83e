// Package topology resolves shard identifiers to the hosts that serve them.
//
// # Overview
//
// Sharded clusters track their members in the config database's shards
// collection. Each record carries the shard id and a host string in one of
// two shapes:
//
//	"rs0/a.example:27018,b.example:27018"   replica set shard
//	"a.example:27018,b.example:27018"       standalone host list
//
// This package reads that catalog once per planning call and flattens it
// into a ShardMap, which the planner consults to attach preferred hosts to
// each partition:
//
//	shard catalog ──> ParseHosts ──> ShardMap{"rs0": [a:27018, b:27018]}
//
// Lookups of unknown shard ids return an empty host list; a partition with
// no host affinity is still schedulable, just without locality.
package topology
