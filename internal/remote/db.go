// internal/remote/db.go
package remote

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"standup-service/pkg/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels returns the tables the remote store holds.
func AllModels() []interface{} {
	return []interface{}{
		&models.StandupRow{},
		&models.TicketRow{},
		&models.SyncConfig{},
	}
}

// DSN turns a backend config into a postgres connection string. A postgres://
// url is used as given with the access key as its password. A hosted project
// url (https://<ref>.supabase.co) maps onto that project's database host.
func DSN(cfg models.BackendConfig) (string, error) {
	raw := strings.TrimSpace(cfg.URL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("remote: invalid backend url %q", raw)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		user := "postgres"
		if u.User != nil && u.User.Username() != "" {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, cfg.Key)
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", "require")
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	case "https", "http":
		ref, _, ok := strings.Cut(u.Hostname(), ".")
		if !ok || ref == "" {
			return "", fmt.Errorf("remote: cannot derive database host from %q", raw)
		}
		return fmt.Sprintf(
			"host=db.%s.supabase.co port=5432 user=postgres password=%s dbname=postgres sslmode=require",
			ref, quoteDSNValue(cfg.Key),
		), nil
	default:
		return "", fmt.Errorf("remote: unsupported backend url scheme %q", u.Scheme)
	}
}

// quoteDSNValue quotes a keyword/value DSN value per libpq rules.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Open connects to the remote store described by cfg.
func Open(cfg models.BackendConfig) (*gorm.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("remote: connect: %w", err)
	}
	log.Printf("✅ [REMOTE] Connected to %s", cfg.URL)
	return db, nil
}

// AutoMigrate creates or updates the remote tables. Hosted setups usually
// run SchemaSQL by hand instead, since it also installs access policies.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("remote: auto-migrate: %w", err)
	}
	log.Println("✅ [REMOTE] Remote tables migrated")
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
