package adjustments

import (
	"context"
	"fmt"

	"levelbot/config"
	"levelbot/domain/interfaces"
)

// New opens the backend selected by ADJUSTMENT_STORE
func New(ctx context.Context, cfg *config.Config) (interfaces.AdjustmentStore, error) {
	switch cfg.AdjustmentStore {
	case config.AdjustmentStoreFile:
		return NewFileStore(cfg.AdjustmentDir)
	case config.AdjustmentStoreS3:
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.AdjustmentS3Bucket,
			Prefix:    cfg.AdjustmentS3Prefix,
			Region:    cfg.AdjustmentS3Region,
			Endpoint:  cfg.AdjustmentS3Endpoint,
			AccessKey: cfg.AdjustmentS3Key,
			SecretKey: cfg.AdjustmentS3Secret,
		})
	default:
		return nil, fmt.Errorf("unknown adjustment store %q", cfg.AdjustmentStore)
	}
}
