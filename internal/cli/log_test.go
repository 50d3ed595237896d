package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xianaiyang/vlsiFloorplan/pkg/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("test completed")

	if !bytes.Contains(buf.Bytes(), []byte("test completed")) {
		t.Errorf("progress.done() output should contain message, got %q", buf.String())
	}
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "floorplan.log")
	sink, err := openLogFile(path, config.Log{})
	if err != nil {
		t.Fatal(err)
	}

	logger := newLogger(sink, log.InfoLevel)
	logger.Info("annealing", "area", 35)
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "area=35") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestCLISetup_LogFile(t *testing.T) {
	var stderr bytes.Buffer
	c := New(&stderr, log.InfoLevel)
	c.configPath = writeTestConfig(t, "[cache]\nbackend = \"none\"\n")
	c.logFile = filepath.Join(t.TempDir(), "cli.log")

	if err := c.setup(false); err != nil {
		t.Fatal(err)
	}
	c.Logger.Info("hello")
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(c.logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(stderr.String(), "hello") {
		t.Errorf("log line should reach both file and stderr")
	}
}

func TestCLISetup_ConfigLevel(t *testing.T) {
	var stderr bytes.Buffer
	c := New(&stderr, log.InfoLevel)
	c.configPath = writeTestConfig(t, "[log]\nlevel = \"debug\"\n")
	if err := c.setup(false); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}

	c = New(&stderr, log.DebugLevel)
	c.configPath = writeTestConfig(t, "[log]\nlevel = \"warn\"\n")
	if err := c.setup(false); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Error("config must not lower a verbose level")
	}
}

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
