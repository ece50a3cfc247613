package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("bogus", "text").GetLevel())
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "info", "json")

	l.WithFields(logrus.Fields{"operation": "credit", "code": 7}).Info("wallet credited")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wallet credited", entry["msg"])
	assert.Equal(t, "credit", entry["operation"])
	assert.Equal(t, float64(7), entry["code"])
}
