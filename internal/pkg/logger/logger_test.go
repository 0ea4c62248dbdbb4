package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/pkg/logger"
)

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info")

	log.Info("requisição confirmada", map[string]interface{}{"document_number": "IB-20240501-0042"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "requisição confirmada", entry["message"])
	assert.Equal(t, "IB-20240501-0042", entry["document_number"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn")

	log.Debug("invisível", nil)
	log.Info("invisível", nil)
	assert.Zero(t, buf.Len())

	log.Error("falha", errors.New("boom"))
	assert.True(t, strings.Contains(buf.String(), `"error":"boom"`))
}

func TestLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "verbose")

	log.Debug("invisível", nil)
	assert.Zero(t, buf.Len())
	log.Info("visível", nil)
	assert.NotZero(t, buf.Len())
}
