package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextSlogLogger(&buf, slog.LevelDebug).With("request_id", "r-1")

	ctx := WithContext(context.Background(), l)
	FromContext(ctx, Nop()).Info(ctx, "hello")
	assert.Contains(t, buf.String(), "request_id=r-1")

	assert.Equal(t, Nop(), FromContext(context.Background(), nil))
	assert.Equal(t, ctx, WithContext(ctx, nil))
}
