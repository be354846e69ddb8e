package task

import (
	"context"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/utils/log"
)

const (
	TaskSettingRefresh = "setting_refresh"
	TaskCacheRefresh   = "cache_refresh"
	TaskStatsSave      = "stats_save"

	// Settings are allowed to be stale up to this window; admin writes on
	// this instance update the cache immediately.
	settingRefreshInterval = 30 * time.Second
	cacheRefreshInterval   = 1 * time.Minute
)

func Init() {
	Register(TaskSettingRefresh, settingRefreshInterval, false, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := op.SettingRefreshCacheTask(ctx); err != nil {
			log.Warnf("setting refresh task failed: %v", err)
		}
	})

	Register(TaskCacheRefresh, cacheRefreshInterval, false, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := op.RefreshCache(ctx); err != nil {
			log.Warnf("cache refresh task failed: %v", err)
		}
	})

	statsSaveIntervalMinutes, err := op.SettingGetInt(model.SettingKeyStatsSaveInterval)
	if err != nil {
		log.Warnf("failed to get stats save interval: %v", err)
		return
	}
	statsSaveInterval := time.Duration(statsSaveIntervalMinutes) * time.Minute
	Register(TaskStatsSave, statsSaveInterval, false, op.StatsSaveDBTask)
}
