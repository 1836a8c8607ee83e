package planner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dreamware/mongosplit/internal/config"
	"github.com/dreamware/mongosplit/internal/conn"
	"github.com/dreamware/mongosplit/internal/partition"
	"github.com/dreamware/mongosplit/internal/topology"
)

// strategy is the discovery strategy chosen once per planning call.
type strategy int

const (
	// planBySplitVector computes split points with an administrative
	// command. Used for unsharded collections and whenever classification
	// cannot prove the collection is sharded.
	planBySplitVector strategy = iota

	// planByChunks reads the native sharding chunk metadata, one partition
	// per chunk.
	planByChunks
)

// cluster is the slice of server surface the planner needs. The production
// implementation wraps a driver client; tests substitute fakes per call.
type cluster interface {
	// CollStats runs the collection statistics command on the target
	// database.
	CollStats(ctx context.Context, db, coll string) (collStats, error)

	// DBStats runs the database statistics command, which on sharded
	// deployments reports the primary shard id.
	DBStats(ctx context.Context, db string) (dbStats, error)

	// SplitVector runs the split-point command against the admin database
	// and returns the ordered split-key documents.
	SplitVector(ctx context.Context, ns, key string, maxChunkSizeMB int) ([]bson.Raw, error)

	// Chunks reads the chunk catalog records for a namespace, in catalog
	// cursor order.
	Chunks(ctx context.Context, ns string) ([]chunkInfo, error)

	// ShardMap reads the shard catalog into a shard id -> hosts mapping.
	ShardMap(ctx context.Context) (topology.ShardMap, error)
}

type collStats struct {
	Ok      float64 `bson:"ok"`
	Sharded bool    `bson:"sharded"`
}

type dbStats struct {
	Primary string `bson:"primary"`
}

type chunkInfo struct {
	Min   bson.Raw `bson:"min"`
	Max   bson.Raw `bson:"max"`
	Shard string   `bson:"shard"`
}

// Planner computes partition plans for one configured collection. It holds
// no mutable state across calls; a single Planner may be shared by
// concurrent callers as long as its Provider is.
type Planner struct {
	cfg *config.Config
	log zerolog.Logger

	// Connection plumbing, injectable for tests.
	open     func(ctx context.Context) (conn.Handle, cluster, error)
	openHost func(ctx context.Context, host string) (conn.Handle, cluster, error)
	release  func(h conn.Handle)
}

// New builds a planner over the given provider. The TLS settings are
// resolved once here so a bad CA file fails fast instead of on first use.
func New(cfg *config.Config, provider *conn.Provider, log zerolog.Logger) (*Planner, error) {
	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return nil, err
	}
	opts := conn.Options{
		Credential: cfg.Credential(),
		TLS:        tlsCfg,
		AppName:    "mongosplit",
	}

	p := &Planner{cfg: cfg, log: log}
	p.open = func(ctx context.Context) (conn.Handle, cluster, error) {
		h, client, err := provider.Acquire(ctx, cfg.Hosts, opts)
		if err != nil {
			return conn.Handle{}, nil, err
		}
		return h, &driverCluster{client: client, log: log, batch: cfg.BatchSize}, nil
	}
	p.openHost = func(ctx context.Context, host string) (conn.Handle, cluster, error) {
		h, client, err := provider.AcquireHost(ctx, host, opts)
		if err != nil {
			return conn.Handle{}, nil, err
		}
		return h, &driverCluster{client: client, log: log, batch: cfg.BatchSize}, nil
	}
	p.release = func(h conn.Handle) {
		provider.Release(h, cfg.IdleTimeout)
	}
	return p, nil
}

// ComputePartitions produces the ordered partition plan for the configured
// collection. The anticipated failure classes all degrade through their
// fallback tiers, so the worst result is a single unbounded partition; the
// returned error is non-nil only when the cluster client itself cannot be
// acquired.
//
// Plans are built fresh on every call and reflect whatever the cluster
// metadata said at that moment.
func (p *Planner) ComputePartitions(ctx context.Context) ([]partition.Partition, error) {
	h, cl, err := p.open(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquiring cluster client")
	}
	defer p.release(h)

	switch p.classify(ctx, cl) {
	case planByChunks:
		return p.chunkPartitions(ctx, cl), nil
	default:
		return p.splitVectorPartitions(ctx, cl), nil
	}
}

// classify decides the discovery strategy from the collection statistics.
// A missing sharded flag means unsharded, and so does a failed stats
// command: the split-vector path ends in an infallible tier, so routing
// classification failures there keeps planning from ever aborting the read.
func (p *Planner) classify(ctx context.Context, cl cluster) strategy {
	stats, err := cl.CollStats(ctx, p.cfg.Database, p.cfg.Collection)
	if err != nil {
		p.log.Warn().Err(err).
			Str("namespace", p.cfg.Namespace()).
			Msg("Collection stats unavailable; planning as unsharded.")
		return planBySplitVector
	}
	if stats.Ok != 1 || !stats.Sharded {
		return planBySplitVector
	}
	return planByChunks
}
