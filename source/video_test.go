package source

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenFallsBackThenReportsUnavailable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Missing file plus an impossible capture device: the fallback is
	// attempted once, logged, and the combined failure is unavailable.
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"), 987, logger)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, buf.String(), "falling back to camera")
}
