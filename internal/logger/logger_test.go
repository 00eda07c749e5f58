package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finplan/internal/logger"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.New("debug").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, logger.New("nonsense").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, logger.New("").GetLevel())
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewJSON(buf, "info"))

	log := logger.FromContext(ctx)
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestFromContext_Default(t *testing.T) {
	log := logger.FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.WithFields(logger.NewJSON(buf, "info"), map[string]any{"budget_id": "b-1"})

	log.Info().Msg("run")

	assert.Contains(t, buf.String(), `"budget_id":"b-1"`)
}
