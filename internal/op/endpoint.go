package op

import (
	"context"
	"fmt"

	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/utils/cache"
	"gorm.io/gorm/clause"
)

var endpointCache = cache.New[string, model.Endpoint](16)

// EndpointEnsure seeds a row for a registered source adapter. Existing rows
// keep their operational status across restarts.
func EndpointEnsure(endpoint *model.Endpoint, ctx context.Context) error {
	if existing, ok := endpointCache.Get(endpoint.Slug); ok {
		*endpoint = existing
		return nil
	}
	if endpoint.Status == "" {
		endpoint.Status = model.EndpointStatusActive
	}
	if err := db.GetDB().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(endpoint).Error; err != nil {
		return fmt.Errorf("failed to ensure endpoint: %w", err)
	}
	endpointCache.Set(endpoint.Slug, *endpoint)
	return nil
}

func EndpointGetBySlug(slug string, ctx context.Context) (model.Endpoint, error) {
	endpoint, ok := endpointCache.Get(slug)
	if !ok {
		return model.Endpoint{}, fmt.Errorf("endpoint not found")
	}
	return endpoint, nil
}

func EndpointList(ctx context.Context) ([]model.Endpoint, error) {
	endpoints := make([]model.Endpoint, 0, endpointCache.Len())
	for _, endpoint := range endpointCache.GetAll() {
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}

func EndpointSetStatus(slug string, status model.EndpointStatus, ctx context.Context) error {
	endpoint, ok := endpointCache.Get(slug)
	if !ok {
		return fmt.Errorf("endpoint not found")
	}
	if !status.Valid() {
		return fmt.Errorf("invalid endpoint status: %s", status)
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.Endpoint{}).
		Where("slug = ?", slug).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update endpoint status: %w", err)
	}
	endpoint.Status = status
	endpointCache.Set(slug, endpoint)
	return nil
}

func endpointRefreshCache(ctx context.Context) error {
	endpoints := []model.Endpoint{}
	if err := db.GetDB().WithContext(ctx).Find(&endpoints).Error; err != nil {
		return err
	}
	for _, endpoint := range endpoints {
		endpointCache.Set(endpoint.Slug, endpoint)
	}
	return nil
}
