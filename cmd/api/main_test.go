package main

import (
	"bytes"
	"testing"

	"membership-checkout-bridge/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerCarriesServiceAndEnvironment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Log{Level: "info", Format: "json"}, config.Environment{Name: "staging"})

	logger.Info().Msg("boot")

	assert.Contains(t, buf.String(), `"service":"checkout-bridge"`)
	assert.Contains(t, buf.String(), `"environment":"staging"`)
}

func TestNewLoggerFallsBackToInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Log{Level: "nonsense"}, config.Environment{Name: "development"})

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
