package op

import (
	"context"
	"fmt"
	"time"
)

func InitCache() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := settingRefreshCache(ctx); err != nil {
		return fmt.Errorf("setting refresh cache error: %v", err)
	}
	if err := userRefreshCache(ctx); err != nil {
		return fmt.Errorf("user refresh cache error: %v", err)
	}
	if err := apiKeyRefreshCache(ctx); err != nil {
		return fmt.Errorf("api key refresh cache error: %v", err)
	}
	if err := endpointRefreshCache(ctx); err != nil {
		return fmt.Errorf("endpoint refresh cache error: %v", err)
	}
	if err := statsRefreshCache(ctx); err != nil {
		return fmt.Errorf("stats refresh cache error: %v", err)
	}
	return nil
}

// RefreshCache re-reads the read-mostly entity caches, run periodically so
// writes from other instances become visible within the task interval.
func RefreshCache(ctx context.Context) error {
	if err := userRefreshCache(ctx); err != nil {
		return err
	}
	if err := apiKeyRefreshCache(ctx); err != nil {
		return err
	}
	return endpointRefreshCache(ctx)
}

func SaveCache() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return StatsSaveDB(ctx)
}
