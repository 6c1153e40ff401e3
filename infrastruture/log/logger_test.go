package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("Writes prefixed levels", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("SESSION", "", &buf)
		require.NoError(t, err)

		l.Info("started")
		l.Warning("slow")
		l.Error("failed")

		out := buf.String()
		assert.Contains(t, out, "[SESSION]")
		assert.Contains(t, out, "[INFO]")
		assert.Contains(t, out, "started")
		assert.Contains(t, out, "[WARNING]")
		assert.Contains(t, out, "slow")
		assert.Contains(t, out, "[ERROR]")
		assert.Contains(t, out, "failed")
		assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))
	})

	t.Run("Invalid arguments", func(t *testing.T) {
		_, err := New("", "", &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrEmptyPrefix)
		_, err = New("APP", "", nil)
		assert.ErrorIs(t, err, ErrNilWriter)
	})
}
