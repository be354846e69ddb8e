package migrate

import (
	"fmt"

	"gorm.io/gorm"
)

func init() {
	RegisterAfterAutoMigration(Migration{
		Version: 1,
		Up:      migrateUserDailyLimitToKeys,
	})
}

// 001: early versions stored the daily quota on users.daily_limit and applied
// it to every key the user held. Copy the value onto each api_keys row that
// still has no limit of its own, then drop the legacy column.
func migrateUserDailyLimitToKeys(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}

	dialect := db.Dialector.Name()

	// column existence helper (sqlite needs exact check; gorm HasColumn may false-positive)
	hasColumn := func(table, column string) (bool, error) {
		if dialect == "sqlite" {
			var name string
			if err := db.Raw("SELECT name FROM pragma_table_info(?) WHERE name = ? LIMIT 1", table, column).
				Scan(&name).Error; err != nil {
				return false, fmt.Errorf("failed to check sqlite column %s.%s: %w", table, column, err)
			}
			return name == column, nil
		}
		return db.Migrator().HasColumn(table, column), nil
	}

	hasLegacy, err := hasColumn("users", "daily_limit")
	if err != nil {
		return err
	}
	if !hasLegacy {
		return nil
	}

	if err := db.Exec(`UPDATE api_keys SET daily_limit = (
		SELECT daily_limit FROM users WHERE users.id = api_keys.user_id
	) WHERE (daily_limit IS NULL OR daily_limit = 0)
	AND EXISTS (SELECT 1 FROM users WHERE users.id = api_keys.user_id)`).Error; err != nil {
		return fmt.Errorf("failed to copy users.daily_limit onto api_keys: %w", err)
	}

	if err := db.Exec("ALTER TABLE users DROP COLUMN daily_limit").Error; err != nil {
		return fmt.Errorf("failed to drop users.daily_limit: %w", err)
	}
	return nil
}
