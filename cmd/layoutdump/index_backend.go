package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"citylayout.ai/internal/persistence/indexdb"
	"citylayout.ai/internal/persistence/kvdump"
)

// openRecorder picks the index backend from LC_INDEX_BACKEND. A nil recorder
// with a nil error means indexing is off.
func openRecorder(dataDir, dimension string, logger *log.Logger) (indexdb.Recorder, error) {
	switch backend := indexBackend(); backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(sqlitePath(dataDir), logger)
	case "leveldb":
		return kvdump.Open(filepath.Join(dataDir, "index", "layout.ldb"))
	case "remote":
		endpoint := strings.TrimSpace(os.Getenv("LC_INDEX_REMOTE_URL"))
		token := strings.TrimSpace(os.Getenv("LC_INDEX_REMOTE_TOKEN"))
		if endpoint == "" {
			return nil, fmt.Errorf("LC_INDEX_BACKEND=remote but LC_INDEX_REMOTE_URL is empty")
		}
		flushMS := envInt("LC_INDEX_REMOTE_FLUSH_MS", 500)
		batchSize := envInt("LC_INDEX_REMOTE_BATCH_SIZE", 128)
		return indexdb.OpenRemote(indexdb.RemoteConfig{
			Endpoint:      endpoint,
			Token:         token,
			Dimension:     dimension,
			BatchSize:     batchSize,
			FlushInterval: time.Duration(flushMS) * time.Millisecond,
			Logger:        logger,
		})
	default:
		return nil, fmt.Errorf("unsupported LC_INDEX_BACKEND: %s", backend)
	}
}

func indexBackend() string {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("LC_INDEX_BACKEND")))
	if backend == "" {
		return "sqlite"
	}
	return backend
}

func sqlitePath(dataDir string) string {
	return filepath.Join(dataDir, "index", "layout.sqlite")
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
