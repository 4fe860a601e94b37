package blob

import (
	"context"
	"fmt"
	"strings"

	"slimelab/internal/config"
)

// Open selects a Store implementation from the blob section of the
// configuration. An empty driver selects the filesystem backend.
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	driver := Driver(strings.ToLower(cfg.Driver))
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
