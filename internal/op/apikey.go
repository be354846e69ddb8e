package op

import (
	"context"
	"fmt"

	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/utils/cache"
)

var apiKeyCache = cache.New[int, model.APIKey](16)
var apiKeyIDMap = cache.New[string, int](16)

func APIKeyCreate(key *model.APIKey, ctx context.Context) error {
	if err := db.GetDB().WithContext(ctx).Create(key).Error; err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	apiKeyCache.Set(key.ID, *key)
	apiKeyIDMap.Set(key.APIKey, key.ID)
	return nil
}

func APIKeyGet(id int, ctx context.Context) (model.APIKey, error) {
	apiKey, ok := apiKeyCache.Get(id)
	if !ok {
		return model.APIKey{}, fmt.Errorf("API key not found")
	}
	return apiKey, nil
}

func APIKeyGetByKey(apiKey string, ctx context.Context) (model.APIKey, error) {
	id, ok := apiKeyIDMap.Get(apiKey)
	if !ok {
		return model.APIKey{}, fmt.Errorf("API key not found")
	}
	return APIKeyGet(id, ctx)
}

func APIKeyList(ctx context.Context) ([]model.APIKey, error) {
	keys := make([]model.APIKey, 0, apiKeyCache.Len())
	for _, apiKey := range apiKeyCache.GetAll() {
		keys = append(keys, apiKey)
	}
	return keys, nil
}

func APIKeyListByUser(userID uint, ctx context.Context) ([]model.APIKey, error) {
	keys := make([]model.APIKey, 0)
	for _, apiKey := range apiKeyCache.GetAll() {
		if apiKey.UserID == userID {
			keys = append(keys, apiKey)
		}
	}
	return keys, nil
}

// APIKeyCountActive counts non-revoked keys a user holds, for the
// max-keys creation rule.
func APIKeyCountActive(userID uint, ctx context.Context) int {
	count := 0
	for _, apiKey := range apiKeyCache.GetAll() {
		if apiKey.UserID == userID && apiKey.Status == model.APIKeyStatusActive {
			count++
		}
	}
	return count
}

// APIKeyRevoke flips a key to REVOKED. Revoked keys are never reactivated.
func APIKeyRevoke(id int, ctx context.Context) error {
	key, ok := apiKeyCache.Get(id)
	if !ok {
		return fmt.Errorf("API key not found")
	}
	if key.Status == model.APIKeyStatusRevoked {
		return nil
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.APIKey{ID: id}).
		Update("status", model.APIKeyStatusRevoked).Error; err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	key.Status = model.APIKeyStatusRevoked
	apiKeyCache.Set(id, key)
	return nil
}

func APIKeySetLimit(id int, dailyLimit int, ctx context.Context) error {
	key, ok := apiKeyCache.Get(id)
	if !ok {
		return fmt.Errorf("API key not found")
	}
	if dailyLimit <= 0 {
		return fmt.Errorf("daily limit must be positive")
	}
	if err := db.GetDB().WithContext(ctx).Model(&model.APIKey{ID: id}).
		Update("daily_limit", dailyLimit).Error; err != nil {
		return fmt.Errorf("failed to update API key limit: %w", err)
	}
	key.DailyLimit = dailyLimit
	apiKeyCache.Set(id, key)
	return nil
}

func apiKeyRefreshCache(ctx context.Context) error {
	apiKeys := []model.APIKey{}
	if err := db.GetDB().WithContext(ctx).Find(&apiKeys).Error; err != nil {
		return err
	}
	for _, apiKey := range apiKeys {
		apiKeyCache.Set(apiKey.ID, apiKey)
		apiKeyIDMap.Set(apiKey.APIKey, apiKey.ID)
	}
	return nil
}
