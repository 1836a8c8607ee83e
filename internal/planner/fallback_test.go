package planner

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dreamware/mongosplit/internal/partition"
)

// TestRunTiers verifies tier ordering: first success wins and later tiers
// never run.
func TestRunTiers(t *testing.T) {
	log := zerolog.Nop()
	plan := []partition.Partition{partition.Whole(nil)}

	t.Run("first tier wins", func(t *testing.T) {
		var ran []string
		got := runTiers(log,
			tier{"a", func() ([]partition.Partition, error) {
				ran = append(ran, "a")
				return plan, nil
			}},
			tier{"b", func() ([]partition.Partition, error) {
				ran = append(ran, "b")
				return nil, errors.New("unreachable")
			}},
		)

		assert.Equal(t, plan, got)
		assert.Equal(t, []string{"a"}, ran)
	})

	t.Run("failures fall through in order", func(t *testing.T) {
		var ran []string
		got := runTiers(log,
			tier{"a", func() ([]partition.Partition, error) {
				ran = append(ran, "a")
				return nil, errors.New("no")
			}},
			tier{"b", func() ([]partition.Partition, error) {
				ran = append(ran, "b")
				return nil, errors.New("still no")
			}},
			tier{"c", func() ([]partition.Partition, error) {
				ran = append(ran, "c")
				return plan, nil
			}},
		)

		assert.Equal(t, plan, got)
		assert.Equal(t, []string{"a", "b", "c"}, ran)
	})

	t.Run("all tiers failing yields nil", func(t *testing.T) {
		got := runTiers(log,
			tier{"a", func() ([]partition.Partition, error) { return nil, errors.New("no") }},
		)
		assert.Nil(t, got)
	})
}
