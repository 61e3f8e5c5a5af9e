package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	SetLevel(" WARN ")
	assert.Equal(t, logrus.WarnLevel, Logger.GetLevel())

	SetLevel("loud")
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestForAnalysis(t *testing.T) {
	var buf bytes.Buffer
	out := Logger.Out
	Logger.SetOutput(&buf)
	defer Logger.SetOutput(out)

	ForAnalysis("req-7", "text_extraction", "azure").Info("dispatch")

	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), `"analysis_type":"text_extraction"`)
	assert.Contains(t, buf.String(), `"provider":"azure"`)
}
