package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_SIZES", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("MAX_PIXELS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Token.TTL)
	assert.Nil(t, cfg.Image.AllowedSizes)
	assert.True(t, cfg.Derivative.ResizeCacheCheck)
	assert.False(t, cfg.Derivative.BlurPersistMetadata)
	assert.Equal(t, 32, cfg.Derivative.BlurPreviewSize)
	assert.EqualValues(t, 268402689, cfg.Image.MaxPixels)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_SIZES", " 128w, 480w ,,360x270")
	t.Setenv("DEST_CDN_URL", "https://cdn.example.com/")
	t.Setenv("BLUR_PERSIST_METADATA", "true")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("MAX_PIXELS", "1000000")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"128w", "480w", "360x270"}, cfg.Image.AllowedSizes)
	assert.Equal(t, "https://cdn.example.com", cfg.Derivative.DestCDNURL)
	assert.True(t, cfg.Derivative.BlurPersistMetadata)
	assert.EqualValues(t, 1024, cfg.Image.MaxFileSize)
	assert.EqualValues(t, 1000000, cfg.Image.MaxPixels)
	assert.Equal(t, 0, cfg.Redis.DB)
}
