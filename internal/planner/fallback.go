package planner

import (
	"github.com/rs/zerolog"

	"github.com/dreamware/mongosplit/internal/partition"
)

// tier is one attempt in an ordered fallback chain.
type tier struct {
	name string
	run  func() ([]partition.Partition, error)
}

// runTiers tries each tier in order and returns the first success. Failed
// tiers are logged and their partial results discarded. Chains end in an
// infallible tier; should every tier fail anyway the result is nil.
func runTiers(log zerolog.Logger, tiers ...tier) []partition.Partition {
	for _, t := range tiers {
		parts, err := t.run()
		if err == nil {
			return parts
		}
		log.Warn().Err(err).Str("tier", t.name).Msg("Planning tier failed; trying next.")
	}
	return nil
}
