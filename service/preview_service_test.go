package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tshirt-bundle/logger"
)

func TestPreviewService_PageURL(t *testing.T) {
	svc := NewPreviewService("http://localhost:8080/", "", logger.NewNop())
	assert.Equal(t, "http://localhost:8080/bundle/abc/page", svc.PageURL("abc"))
}

func TestContentType(t *testing.T) {
	ct, err := ContentType("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	ct, err = ContentType("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	_, err = ContentType("gif")
	assert.ErrorIs(t, err, ErrPreviewFormat)
}

func TestDetectChromePath_PrefersConfigured(t *testing.T) {
	chrome := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(chrome, []byte{}, 0o755))

	assert.Equal(t, chrome, detectChromePath(chrome))
	assert.NotEqual(t, "/does/not/exist", detectChromePath("/does/not/exist"))
}
