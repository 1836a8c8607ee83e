package topology

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Cluster metadata catalog names. Shard and chunk records live in fixed
// collections of the config database on every sharded deployment.
const (
	ConfigDatabase   = "config"
	ShardsCollection = "shards"
	ChunksCollection = "chunks"
)

// Shard is one record of the shard catalog.
type Shard struct {
	ID   string `bson:"_id"`  // Shard identifier, e.g. "rs0"
	Host string `bson:"host"` // Host string, e.g. "rs0/a:27018,b:27018"
}

// ShardMap maps a shard identifier to its ordered member host list.
// Built once per planning call and read-only afterwards.
type ShardMap map[string][]string

// Hosts returns the member hosts for a shard id. Unknown ids resolve to an
// empty list rather than an error, so a plan can still be produced when the
// chunk catalog references a shard the shard catalog does not.
func (m ShardMap) Hosts(id string) []string {
	return m[id]
}

// ParseHosts splits a shard catalog host string into "host:port" entries.
//
// The catalog reports either "replicaSetName/host1:port1,host2:port2,..."
// or, for standalone shards, a bare comma-separated host list. Each comma
// token keeps only the text after its last "/", which strips the replica
// set prefix from the first token and leaves the rest untouched.
func ParseHosts(host string) []string {
	tokens := strings.Split(host, ",")
	hosts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if i := strings.LastIndex(tok, "/"); i >= 0 {
			tok = tok[i+1:]
		}
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		hosts = append(hosts, tok)
	}
	return hosts
}

// BuildMap turns shard records into a ShardMap. Records with no id cannot be
// keyed and are skipped with a warning; a degraded host list beats failing
// the whole planning call over one malformed catalog record.
func BuildMap(log zerolog.Logger, shards []Shard) ShardMap {
	m := make(ShardMap, len(shards))
	for _, s := range shards {
		if s.ID == "" {
			log.Warn().Str("host", s.Host).Msg("Skipping shard record with no _id.")
			continue
		}
		m[s.ID] = ParseHosts(s.Host)
	}
	return m
}

// DescribeShards reads the full shard catalog of the cluster the client is
// connected to and returns the shard id to host list mapping. The catalog
// cursor is closed on every exit path.
func DescribeShards(ctx context.Context, log zerolog.Logger, client *mongo.Client) (ShardMap, error) {
	cur, err := client.Database(ConfigDatabase).Collection(ShardsCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "querying shard catalog")
	}
	defer cur.Close(ctx)

	var shards []Shard
	for cur.Next(ctx) {
		var s Shard
		if err := cur.Decode(&s); err != nil {
			return nil, errors.Wrap(err, "decoding shard record")
		}
		shards = append(shards, s)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating shard catalog")
	}

	log.Debug().Int("shards", len(shards)).Msg("Read shard catalog.")
	return BuildMap(log, shards), nil
}
