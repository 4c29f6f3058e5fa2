package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"speech-relay/config"
	"speech-relay/internal/logging"
)

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default info", level: "", wantInfo: true},
		{name: "debug", level: "debug", wantDebug: true, wantInfo: true},
		{name: "warn hides info", level: "warn"},
		{name: "verbose overrides", level: "error", verbose: true, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.Setup(config.LogConfig{Level: tt.level}, tt.verbose, &buf)

			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged: got %t, want %t", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged: got %t, want %t", got, tt.wantInfo)
			}
		})
	}
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(config.LogConfig{Format: "json"}, false, &buf)

	logger.Info("transcribed", "run_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if record["msg"] != "transcribed" || record["run_id"] != "abc" {
		t.Errorf("record: got %v", record)
	}
}
