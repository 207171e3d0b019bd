package firebase

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVerifierNeedsCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewVerifier(context.Background(), "", false, logger)
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = NewVerifier(context.Background(), filepath.Join(t.TempDir(), "missing.json"), false, logger)
	assert.ErrorContains(t, err, "not found")
}
