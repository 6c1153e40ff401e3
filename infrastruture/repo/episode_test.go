package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRecentFirst(t *testing.T) {
	tests := []struct {
		name  string
		limit int64
		want  int64
	}{
		{"Default", 0, defaultEpisodeLimit},
		{"Negative", -1, defaultEpisodeLimit},
		{"Within bounds", 7, 7},
		{"Capped", 10_000, maxEpisodeLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := recentFirst(tc.limit)
			require.NotNil(t, opts.Limit)
			assert.Equal(t, tc.want, *opts.Limit)
			assert.Equal(t, bson.D{{Key: "endedAt", Value: -1}}, opts.Sort)
		})
	}
}
