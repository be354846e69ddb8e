package op

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/utils/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrQuotaExceeded is returned by UsageConsume when the key already sits at
// its effective daily limit. The counter is left untouched in that case.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// consume retries only on store-level conflicts (sqlite busy, serialization
// failures), never on a quota refusal.
const usageConsumeRetries = 3

// UsageConsume is the check-then-increment of the usage ledger as one
// indivisible unit: the day row is created if missing, then a single guarded
// UPDATE increments the counter only while it is below the limit. The store
// executes that statement atomically, so N callers racing at limit-1 end
// with exactly one success and a counter of exactly limit, never more.
// Returns the post-increment count.
func UsageConsume(apiKeyID int, day string, limit int, ctx context.Context) (int, error) {
	var lastErr error
	for attempt := 0; attempt < usageConsumeRetries; attempt++ {
		used, err := usageConsumeOnce(apiKeyID, day, limit, ctx)
		if err == nil || errors.Is(err, ErrQuotaExceeded) {
			return used, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("failed to consume usage: %w", lastErr)
}

func usageConsumeOnce(apiKeyID int, day string, limit int, ctx context.Context) (int, error) {
	dbConn := db.GetDB().WithContext(ctx)

	if err := dbConn.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UsageLog{ID: snowflake.GenerateID(), APIKeyID: apiKeyID, Date: day}).Error; err != nil {
		return 0, err
	}

	result := dbConn.Model(&model.UsageLog{}).
		Where("api_key_id = ? AND date = ? AND requests_count < ?", apiKeyID, day, limit).
		UpdateColumn("requests_count", gorm.Expr("requests_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		// The row exists (ensured above), so the ceiling was hit.
		return 0, ErrQuotaExceeded
	}

	var row model.UsageLog
	if err := dbConn.Where("api_key_id = ? AND date = ?", apiKeyID, day).
		First(&row).Error; err != nil {
		return 0, err
	}
	return row.RequestsCount, nil
}

// UsageToday reports the consumed count for a key on the given day
// without touching the counter.
func UsageToday(apiKeyID int, day string, ctx context.Context) (int, error) {
	var row model.UsageLog
	err := db.GetDB().WithContext(ctx).
		Where("api_key_id = ? AND date = ?", apiKeyID, day).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return row.RequestsCount, nil
}

// UsageTotalByKey sums all historical day rows of one key.
func UsageTotalByKey(apiKeyID int, ctx context.Context) (int64, error) {
	var total int64
	err := db.GetDB().WithContext(ctx).Model(&model.UsageLog{}).
		Where("api_key_id = ?", apiKeyID).
		Select("COALESCE(SUM(requests_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum usage: %w", err)
	}
	return total, nil
}

// UsageTotalByUser sums all historical rows across every key a user holds.
func UsageTotalByUser(userID uint, ctx context.Context) (int64, error) {
	var total int64
	err := db.GetDB().WithContext(ctx).Model(&model.UsageLog{}).
		Joins("JOIN api_keys ON api_keys.id = usage_logs.api_key_id").
		Where("api_keys.user_id = ?", userID).
		Select("COALESCE(SUM(usage_logs.requests_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum usage: %w", err)
	}
	return total, nil
}

// UsageSeriesByKey returns the recent per-day rows of a key, newest first.
func UsageSeriesByKey(apiKeyID int, days int, ctx context.Context) ([]model.UsageLog, error) {
	since := model.UsageDay(time.Now().AddDate(0, 0, -days))
	rows := []model.UsageLog{}
	err := db.GetDB().WithContext(ctx).
		Where("api_key_id = ? AND date >= ?", apiKeyID, since).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read usage series: %w", err)
	}
	return rows, nil
}
