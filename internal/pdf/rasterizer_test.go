package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/form-renamer/internal/domain"
)

func TestRasterizer_FirstPage_MissingFile(t *testing.T) {
	r := NewRasterizer(300, nil)

	_, err := r.FirstPage(context.Background(), filepath.Join(t.TempDir(), "ghost.pdf"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}

func TestRasterizer_FirstPage_RejectsBadDPI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	r := NewRasterizer(10, nil)

	_, err := r.FirstPage(context.Background(), path)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "dpi")
}

func TestRasterizer_FirstPage_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	r := NewRasterizer(300, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.FirstPage(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
