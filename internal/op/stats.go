package op

import (
	"context"
	"sync"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/utils/cache"
	"github.com/JzuvGTI/jzrestapi/internal/utils/log"
	"gorm.io/gorm/clause"
)

var statsEndpointCache = cache.New[string, model.StatsEndpoint](16)
var statsEndpointNeedUpdate = make(map[string]struct{})
var statsEndpointNeedUpdateLock sync.Mutex

// StatsEndpointAdd counts one proxied request outcome. Counters accumulate in
// memory and are flushed by the stats save task.
func StatsEndpointAdd(slug string, success bool) {
	stats, ok := statsEndpointCache.Get(slug)
	if !ok {
		stats = model.StatsEndpoint{Slug: slug}
	}
	if success {
		stats.RequestSuccess++
	} else {
		stats.RequestFailed++
	}
	statsEndpointCache.Set(slug, stats)

	statsEndpointNeedUpdateLock.Lock()
	statsEndpointNeedUpdate[slug] = struct{}{}
	statsEndpointNeedUpdateLock.Unlock()
}

func StatsEndpointGet(slug string) model.StatsEndpoint {
	stats, ok := statsEndpointCache.Get(slug)
	if !ok {
		return model.StatsEndpoint{Slug: slug}
	}
	return stats
}

func StatsEndpointList() []model.StatsEndpoint {
	all := statsEndpointCache.GetAll()
	stats := make([]model.StatsEndpoint, 0, len(all))
	for _, s := range all {
		stats = append(stats, s)
	}
	return stats
}

func StatsSaveDBTask() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := StatsSaveDB(ctx); err != nil {
		log.Errorf("stats save db error: %v", err)
	}
}

func StatsSaveDB(ctx context.Context) error {
	statsEndpointNeedUpdateLock.Lock()
	slugs := make([]string, 0, len(statsEndpointNeedUpdate))
	for slug := range statsEndpointNeedUpdate {
		slugs = append(slugs, slug)
	}
	statsEndpointNeedUpdate = make(map[string]struct{})
	statsEndpointNeedUpdateLock.Unlock()

	if len(slugs) == 0 {
		return nil
	}

	rows := make([]model.StatsEndpoint, 0, len(slugs))
	for _, slug := range slugs {
		if stats, ok := statsEndpointCache.Get(slug); ok {
			rows = append(rows, stats)
		}
	}

	if result := db.GetDB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"request_success", "request_failed"}),
	}).Create(&rows); result.Error != nil {
		return result.Error
	}
	return nil
}

func statsRefreshCache(ctx context.Context) error {
	stats := []model.StatsEndpoint{}
	if err := db.GetDB().WithContext(ctx).Find(&stats).Error; err != nil {
		return err
	}
	for _, s := range stats {
		statsEndpointCache.Set(s.Slug, s)
	}
	return nil
}
