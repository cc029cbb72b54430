package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tailorci/tailor/internal/logging"
)

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		verbosity int
		debug     bool
		info      bool
		warn      bool
	}{
		{0, false, false, true},
		{1, false, true, true},
		{2, true, true, true},
		{5, true, true, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		log := logging.New(&buf, tt.verbosity)

		log.Debug("debug line")
		log.Info("info line")
		log.Warn("warn line")

		out := buf.String()
		assert.Equal(t, tt.debug, bytes.Contains([]byte(out), []byte("debug line")), "verbosity %d debug", tt.verbosity)
		assert.Equal(t, tt.info, bytes.Contains([]byte(out), []byte("info line")), "verbosity %d info", tt.verbosity)
		assert.Equal(t, tt.warn, bytes.Contains([]byte(out), []byte("warn line")), "verbosity %d warn", tt.verbosity)
	}
}
