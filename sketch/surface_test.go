package sketch

import (
	"testing"

	"github.com/GrainArc/SketchMap/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifierDefaultsToComponentLogger(t *testing.T) {
	assert.Same(t, logging.NewLogger("sketch"), LogNotifier{}.logger())
}

func TestLogNotifierLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := LogNotifier{Log: logrus.NewEntry(logger)}

	n.Notify(LevelSuccess, "Dataset parks saved successfully")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "success", entry.Data["notify_level"])
	assert.NotContains(t, entry.Data, "level")

	n.Notify(LevelError, "Error loading dataset: timeout")
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Error loading dataset: timeout", entry.Message)
}
