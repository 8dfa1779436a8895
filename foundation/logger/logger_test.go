package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/cryptochain/foundation/logger"
)

func Test_New(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	log, err := logger.New("TEST", path)
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %v", err)
	}

	log.Infow("startup", "status", "testing")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Should be able to read the log output: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Should write a JSON log entry: %v", err)
	}

	if entry["service"] != "TEST" || entry["msg"] != "startup" || entry["status"] != "testing" {
		t.Fatalf("Should write the service, message and fields: %v", entry)
	}
}
