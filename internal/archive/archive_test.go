package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shraw06/docsplusplus/pkg/config"
)

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	a, err := New(context.Background(), config.ArchiveConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNilArchiverUploadIsSafe(t *testing.T) {
	var a *Archiver
	assert.NotPanics(t, func() {
		err := a.Upload(context.Background(), "1/doc.txt/v1", []byte("hello"))
		assert.NoError(t, err)
	})
}

func TestKeyFormatsSSIDFileAndTag(t *testing.T) {
	assert.Equal(t, "3/doc.txt/v1", Key(3, "doc.txt", "v1"))
}
