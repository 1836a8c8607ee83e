package topology

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestParseHosts tests host-string parsing for the shapes the shard catalog
// reports.
func TestParseHosts(t *testing.T) {
	tests := []struct {
		name string
		host string
		want []string
	}{
		{
			name: "replica set prefix",
			host: "rs0/a:27018,b:27018",
			want: []string{"a:27018", "b:27018"},
		},
		{
			name: "bare host list",
			host: "a:27018,b:27018,c:27018",
			want: []string{"a:27018", "b:27018", "c:27018"},
		},
		{
			name: "single host",
			host: "localhost:27017",
			want: []string{"localhost:27017"},
		},
		{
			name: "empty string",
			host: "",
			want: []string{},
		},
		{
			name: "whitespace around tokens",
			host: "rs1/a:27018, b:27018",
			want: []string{"a:27018", "b:27018"},
		},
		{
			name: "slash in every token",
			host: "rs2/a:27018,rs2/b:27018",
			want: []string{"a:27018", "b:27018"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHosts(tt.host)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d hosts, got %d (%v)", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Host %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// TestBuildMap verifies catalog records turn into the shard->hosts mapping
// and that malformed records degrade rather than fail.
func TestBuildMap(t *testing.T) {
	log := zerolog.Nop()

	t.Run("well-formed catalog", func(t *testing.T) {
		m := BuildMap(log, []Shard{
			{ID: "rs0", Host: "rs0/a:27018,b:27018"},
			{ID: "rs1", Host: "rs1/c:27018"},
		})

		assert.Len(t, m, 2)
		assert.Equal(t, []string{"a:27018", "b:27018"}, m.Hosts("rs0"))
		assert.Equal(t, []string{"c:27018"}, m.Hosts("rs1"))
	})

	t.Run("record without id is skipped", func(t *testing.T) {
		m := BuildMap(log, []Shard{
			{ID: "", Host: "rs0/a:27018"},
			{ID: "rs1", Host: "rs1/c:27018"},
		})

		assert.Len(t, m, 1)
		assert.NotContains(t, m, "")
	})

	t.Run("unknown shard resolves to empty host list", func(t *testing.T) {
		m := BuildMap(log, nil)

		assert.Empty(t, m.Hosts("nope"))
	})
}
