package planner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dreamware/mongosplit/internal/partition"
)

// splitVectorPartitions is the unsharded path. Three ordered tiers:
//
//  1. splitVector through the client we already hold. Fails when the
//     command is routed through a router node, which rejects it.
//  2. The same command against a direct connection to the shard hosting
//     the database's primary copy.
//  3. A single unbounded partition with no host preference.
//
// The last tier cannot fail, so this function always returns a plan.
func (p *Planner) splitVectorPartitions(ctx context.Context, cl cluster) []partition.Partition {
	return runTiers(p.log,
		tier{"routed splitVector", func() ([]partition.Partition, error) {
			return p.routedSplit(ctx, cl)
		}},
		tier{"shard-direct splitVector", func() ([]partition.Partition, error) {
			return p.directSplit(ctx, cl)
		}},
		tier{"single partition", func() ([]partition.Partition, error) {
			return []partition.Partition{partition.Whole(nil)}, nil
		}},
	)
}

func (p *Planner) routedSplit(ctx context.Context, cl cluster) ([]partition.Partition, error) {
	keys, err := cl.SplitVector(ctx, p.cfg.Namespace(), p.cfg.SplitKey, p.cfg.SplitSizeMB)
	if err != nil {
		return nil, err
	}
	return splitPartitions(keys), nil
}

// directSplit reruns splitVector against the shard that holds the
// database's primary copy: dbStats names the shard, the shard catalog
// names its hosts, and a direct single-host connection runs the command.
// The direct connection is released on every exit path.
func (p *Planner) directSplit(ctx context.Context, cl cluster) ([]partition.Partition, error) {
	stats, err := cl.DBStats(ctx, p.cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, "reading database stats")
	}
	if stats.Primary == "" {
		return nil, errors.Errorf("database stats for %s report no primary shard", p.cfg.Database)
	}

	shards, err := cl.ShardMap(ctx)
	if err != nil {
		return nil, err
	}
	hosts := shards.Hosts(stats.Primary)
	if len(hosts) == 0 {
		return nil, errors.Errorf("primary shard %q not in shard catalog", stats.Primary)
	}

	h, direct, err := p.openHost(ctx, hosts[0])
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to primary shard %q", stats.Primary)
	}
	defer p.release(h)

	keys, err := direct.SplitVector(ctx, p.cfg.Namespace(), p.cfg.SplitKey, p.cfg.SplitSizeMB)
	if err != nil {
		return nil, err
	}
	return splitPartitions(keys), nil
}

// splitRanges pairs consecutive split keys into contiguous half-open
// ranges, with unbounded sentinels prepended and appended: K keys yield
// K+1 ranges, range i's upper bound is range i+1's lower bound, and the
// outermost bounds are unbounded.
func splitRanges(keys []bson.Raw) []partition.Range {
	ranges := make([]partition.Range, 0, len(keys)+1)
	var lower bson.Raw
	for _, k := range keys {
		ranges = append(ranges, partition.NewRange(lower, k))
		lower = k
	}
	return append(ranges, partition.NewRange(lower, nil))
}

// splitPartitions numbers the ranges into partitions. Split points carry no
// placement information, so the partitions have no preferred hosts.
func splitPartitions(keys []bson.Raw) []partition.Partition {
	return lo.Map(splitRanges(keys), func(r partition.Range, i int) partition.Partition {
		return partition.Partition{Index: i, Range: r}
	})
}
