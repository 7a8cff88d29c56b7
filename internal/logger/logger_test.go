package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "warn")

	log.Info("hidden")
	log.Warn("shown", "k", "v")

	assert.Equal(t, "shown", gjson.Get(buf.String(), "msg").String())
	assert.Equal(t, "v", gjson.Get(buf.String(), "k").String())
}

func TestInjectAndWithCtx(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, "debug").With("request_id", "r-1")

	ctx := Inject(context.Background(), log)
	WithCtx(ctx).Debug("hello")
	assert.Contains(t, buf.String(), "request_id=r-1")

	assert.Equal(t, slog.Default(), WithCtx(context.Background()))
}
