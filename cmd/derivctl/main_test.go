package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/phambaophuc/image-derivative/internal/services/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSign(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "sign", "photos/1.jpg", "--size", "480w", "--blur", "--base-url", "https://img.example.com/api/v1/images/blur")
	require.NoError(t, err)
	assert.Contains(t, out, "audience: blur/480w/photos/1.jpg")
	assert.Contains(t, out, "url:      https://img.example.com/api/v1/images/blur?")

	var tok string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "token:") {
			tok = strings.TrimSpace(strings.TrimPrefix(line, "token:"))
		}
	}
	v := token.NewValidator("cli-secret", zap.NewNop())
	assert.True(t, v.Verify(context.Background(), tok, "blur/480w/photos/1.jpg"))
	assert.False(t, v.Verify(context.Background(), tok, "480w/photos/1.jpg"))
}

func TestSignWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "sign", "photos/1.jpg", "--size", "480w", "--blur=false", "--base-url", "")
	assert.ErrorContains(t, err, "failed to sign")
}

func TestParse(t *testing.T) {
	t.Setenv("ALLOWED_SIZES", "")

	out, err := execute(t, "parse", "480w", "360x270")
	require.NoError(t, err)
	assert.Contains(t, out, "width=480 height=0")
	assert.Contains(t, out, "width=360 height=270")

	out, err = execute(t, "parse", "480w", "481w")
	assert.ErrorContains(t, err, "1 of 2 sizes invalid")
	assert.Regexp(t, `481w\s+invalid`, out)
}
