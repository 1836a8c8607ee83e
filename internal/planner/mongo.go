package planner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dreamware/mongosplit/internal/topology"
)

// adminDatabase hosts the administrative commands.
const adminDatabase = "admin"

// driverCluster implements cluster over a real driver client.
type driverCluster struct {
	client *mongo.Client
	log    zerolog.Logger
	batch  int32 // Cursor batch size for catalog reads
}

func (d *driverCluster) CollStats(ctx context.Context, db, coll string) (collStats, error) {
	var out collStats
	err := d.client.Database(db).
		RunCommand(ctx, bson.D{{Key: "collStats", Value: coll}}).
		Decode(&out)
	if err != nil {
		return collStats{}, errors.Wrapf(err, "collStats %s.%s", db, coll)
	}
	return out, nil
}

func (d *driverCluster) DBStats(ctx context.Context, db string) (dbStats, error) {
	var out dbStats
	err := d.client.Database(db).
		RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).
		Decode(&out)
	if err != nil {
		return dbStats{}, errors.Wrapf(err, "dbStats %s", db)
	}
	return out, nil
}

func (d *driverCluster) SplitVector(ctx context.Context, ns, key string, maxChunkSizeMB int) ([]bson.Raw, error) {
	cmd := bson.D{
		{Key: "splitVector", Value: ns},
		{Key: "keyPattern", Value: bson.D{{Key: key, Value: 1}}},
		{Key: "force", Value: false},
		{Key: "maxChunkSize", Value: maxChunkSizeMB},
	}

	var out struct {
		SplitKeys []bson.Raw `bson:"splitKeys"`
	}
	if err := d.client.Database(adminDatabase).RunCommand(ctx, cmd).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "splitVector %s", ns)
	}

	d.log.Debug().Str("namespace", ns).Int("splitKeys", len(out.SplitKeys)).Msg("Computed split points.")
	return out.SplitKeys, nil
}

func (d *driverCluster) Chunks(ctx context.Context, ns string) ([]chunkInfo, error) {
	coll := d.client.Database(topology.ConfigDatabase).Collection(topology.ChunksCollection)

	cur, err := coll.Find(ctx, bson.D{{Key: "ns", Value: ns}}, options.Find().SetBatchSize(d.batch))
	if err != nil {
		return nil, errors.Wrapf(err, "querying chunk catalog for %s", ns)
	}
	defer cur.Close(ctx)

	var chunks []chunkInfo
	for cur.Next(ctx) {
		var c chunkInfo
		if err := cur.Decode(&c); err != nil {
			return nil, errors.Wrap(err, "decoding chunk record")
		}
		chunks = append(chunks, c)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating chunk catalog")
	}
	return chunks, nil
}

func (d *driverCluster) ShardMap(ctx context.Context) (topology.ShardMap, error) {
	return topology.DescribeShards(ctx, d.log, d.client)
}
