// Command layoutdump resolves a rectangle of chunks in one dimension and
// streams the descriptors to an index backend.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"citylayout.ai/internal/config"
	"citylayout.ai/internal/layout/world"
	"citylayout.ai/internal/persistence/objstore"
)

func main() {
	var (
		configPath = flag.String("config", "./configs/worlds.yaml", "dimension config (.yaml or .toml; empty for built-in defaults)")
		seed       = flag.Int64("seed", 1337, "world seed")
		dimension  = flag.String("dimension", "", "dimension to dump (default: configured default)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		minX       = flag.Int("min-x", -64, "min chunk x")
		minZ       = flag.Int("min-z", -64, "min chunk z")
		maxX       = flag.Int("max-x", 63, "max chunk x")
		maxZ       = flag.Int("max-z", 63, "max chunk z")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[layoutdump] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(strings.TrimSpace(*configPath))
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	layout, err := world.New(cfg, *seed, world.Options{Logger: logger})
	if err != nil {
		logger.Fatalf("layout: %v", err)
	}
	d, ok := layout.Dimension(strings.TrimSpace(*dimension))
	if !ok {
		logger.Fatalf("unknown dimension %q (have %v)", *dimension, layout.Dimensions())
	}

	r, err := rectFromFlags(*minX, *minZ, *maxX, *maxZ)
	if err != nil {
		logger.Fatalf("rectangle: %v", err)
	}

	rec, err := openRecorder(*dataDir, d.Name, logger)
	if err != nil {
		logger.Fatalf("index: %v", err)
	}
	mirror, err := objstore.MirrorFromEnv(*dataDir, logger)
	if err != nil {
		logger.Fatalf("mirror: %v", err)
	}

	runID := uuid.NewString()
	started := time.Now()
	if rec != nil {
		rec.RecordRun(runRow(runID, d, r, started))
	}

	layout.OnStart()
	sum := dump(d, rec, runID, r)
	layout.OnStop()

	if rec != nil {
		if err := rec.Close(); err != nil {
			logger.Printf("index close: %v", err)
		}
		if indexBackend() == "sqlite" {
			mirror.Enqueue(sqlitePath(*dataDir))
		}
		st := rec.Stats()
		if st.DropRunTotal+st.DropRowTotal+st.SendFailedTotal > 0 {
			logger.Printf("index dropped run=%d rows=%d send_failed=%d", st.DropRunTotal, st.DropRowTotal, st.SendFailedTotal)
		}
	}

	mirror.Close()

	b, _ := json.Marshal(sum)
	logger.Printf("run %s dimension=%s took=%s summary=%s", runID, d.Name, time.Since(started).Round(time.Millisecond), b)
}
