package planner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/dreamware/mongosplit/internal/partition"
)

// chunkPartitions is the sharded path: one partition per chunk catalog
// record, preferred hosts resolved through the shard catalog. Any failure,
// including an inconsistent empty catalog, discards partial results and
// degrades to a single unbounded partition preferring every configured
// seed host, so the read can still proceed without parallelism.
func (p *Planner) chunkPartitions(ctx context.Context, cl cluster) []partition.Partition {
	parts, err := p.partitionsFromChunks(ctx, cl)
	if err != nil {
		p.log.Warn().Err(err).
			Str("namespace", p.cfg.Namespace()).
			Msg("Chunk metadata unusable; degrading to a single partition.")
		return []partition.Partition{partition.Whole(p.cfg.Hosts)}
	}
	return parts
}

func (p *Planner) partitionsFromChunks(ctx context.Context, cl cluster) ([]partition.Partition, error) {
	chunks, err := cl.Chunks(ctx, p.cfg.Namespace())
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		// A sharded collection always has at least one chunk; an empty
		// result means the catalog query was answered inconsistently.
		return nil, errors.Errorf("no chunk records for sharded namespace %s", p.cfg.Namespace())
	}

	shards, err := cl.ShardMap(ctx)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("namespace", p.cfg.Namespace()).
		Int("chunks", len(chunks)).
		Msg("Building partitions from chunk catalog.")

	return lo.Map(chunks, func(c chunkInfo, i int) partition.Partition {
		return partition.Partition{
			Index:          i,
			PreferredHosts: shards.Hosts(c.Shard),
			Range:          partition.NewRange(c.Min, c.Max),
		}
	}), nil
}
