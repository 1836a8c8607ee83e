// Package main implements the mongosplit CLI, which computes a partition
// plan for a collection and prints it for a parallel execution engine.
//
// The tool is one-shot: connect, plan, print, exit. Partitions come out as
// a JSON array on stdout, ordered by index, with range bounds in relaxed
// extended JSON; logs go to stderr.
//
// Configuration:
//   - -config: YAML config file (hosts, database, collection, splitKey, ...)
//   - MONGOSPLIT_* environment variables override file values
//   - -hosts, -db, -collection flags override both
//
// Example usage:
//
//	# Plan against a sharded cluster
//	mongosplit -hosts mongos1:27017,mongos2:27017 -db orders -collection events
//
//	# Same, from a config file with debug logging
//	mongosplit -config mongosplit.yaml -v
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/dreamware/mongosplit/internal/config"
	"github.com/dreamware/mongosplit/internal/conn"
	"github.com/dreamware/mongosplit/internal/planner"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		hosts      = flag.String("hosts", "", "comma-separated seed hosts, overrides config")
		database   = flag.String("db", "", "database name, overrides config")
		collection = flag.String("collection", "", "collection name, overrides config")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	src, err := buildSource(*configPath, map[string]string{
		"hosts":      *hosts,
		"database":   *database,
		"collection": *collection,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration failed.")
	}

	cfg, err := config.Resolve(src)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration.")
	}

	provider := conn.NewProvider(log)
	defer provider.Close()

	p, err := planner.New(cfg, provider, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Building planner failed.")
	}

	parts, err := p.ComputePartitions(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Planning failed.")
	}

	log.Info().
		Str("namespace", cfg.Namespace()).
		Int("partitions", len(parts)).
		Msg("Computed partition plan.")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(parts); err != nil {
		log.Fatal().Err(err).Msg("Encoding plan failed.")
	}
}

// buildSource layers the three config sources: file, then environment,
// then non-empty flag overrides.
func buildSource(path string, overrides map[string]string) (config.Map, error) {
	src := config.Map{}
	if path != "" {
		var err error
		if src, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	src = src.WithEnv("MONGOSPLIT", config.Keys()...)
	for k, v := range overrides {
		if v != "" {
			src[k] = v
		}
	}
	return src, nil
}
