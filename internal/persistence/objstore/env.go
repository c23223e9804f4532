package objstore

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// MirrorFromEnv builds a Mirror rooted at root from the LC_OBJSTORE_*
// variables. It returns nil when LC_OBJSTORE_MIRROR is not true.
func MirrorFromEnv(root string, logger *log.Logger) (*Mirror, error) {
	if on, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("LC_OBJSTORE_MIRROR"))); !on {
		return nil, nil
	}
	cfg := Config{
		Endpoint:        os.Getenv("LC_OBJSTORE_ENDPOINT"),
		Bucket:          os.Getenv("LC_OBJSTORE_BUCKET"),
		Region:          os.Getenv("LC_OBJSTORE_REGION"),
		AccessKeyID:     os.Getenv("LC_OBJSTORE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("LC_OBJSTORE_SECRET_ACCESS_KEY"),
	}
	c, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("LC_OBJSTORE_MIRROR=true: %w", err)
	}
	workers, _ := strconv.Atoi(strings.TrimSpace(os.Getenv("LC_OBJSTORE_UPLOAD_WORKERS")))
	return NewMirror(c, root, MirrorOptions{
		Prefix:  os.Getenv("LC_OBJSTORE_PREFIX"),
		Workers: workers,
		Logger:  logger,
	}), nil
}
