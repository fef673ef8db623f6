package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"standup-service/internal/localstore"
	"standup-service/internal/remote"
	"standup-service/pkg/models"

	"gorm.io/gorm"
)

// DefaultCloseGrace is how long a replaced connection stays open for
// requests that already hold a gateway on it.
const DefaultCloseGrace = 30 * time.Second

// Opener connects to a remote store.
type Opener func(models.BackendConfig) (*gorm.DB, error)

// Provider hands out gateways that follow the stored backend config. The
// config is read on every call; the open connection is reused for as long
// as the config stays the same. A connection replaced by a config change is
// closed after closeGrace.
type Provider struct {
	kv          localstore.KV
	open        Opener
	autoMigrate bool
	locals      *locals
	closeGrace  time.Duration

	mu      sync.Mutex
	cfg     models.BackendConfig
	db      *gorm.DB
	retired map[*gorm.DB]*time.Timer
}

// NewProvider returns a provider over kv. A nil open uses remote.Open.
func NewProvider(kv localstore.KV, open Opener, autoMigrate bool) *Provider {
	if open == nil {
		open = remote.Open
	}
	return &Provider{
		kv:          kv,
		open:        open,
		autoMigrate: autoMigrate,
		locals:      newLocals(kv),
		closeGrace:  DefaultCloseGrace,
		retired:     make(map[*gorm.DB]*time.Timer),
	}
}

// Gateway returns a gateway for the current backend config. A configured
// backend that cannot be opened still yields a remote-mode gateway whose
// reads fall back to the local copy and whose writes fail.
func (p *Provider) Gateway(ctx context.Context) (*Gateway, error) {
	cfg, err := localstore.LoadBackendConfig(ctx, p.kv)
	if err != nil {
		return nil, fmt.Errorf("gateway: load backend config: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !cfg.IsConfigured() {
		p.retireLocked()
		return newGateway(p.locals, nil, nil), nil
	}
	if p.db != nil && p.cfg == *cfg {
		return newGateway(p.locals, p.db, nil), nil
	}

	p.retireLocked()
	db, err := p.open(*cfg)
	if err != nil {
		log.Printf("❌ [GATEWAY] Could not open remote backend %s (key %s): %v", cfg.URL, cfg.MaskedKey(), err)
		return newGateway(p.locals, nil, err), nil
	}
	if p.autoMigrate {
		if err := remote.AutoMigrate(db); err != nil {
			log.Printf("⚠️ [GATEWAY] %v", err)
		}
	}
	p.db, p.cfg = db, *cfg
	return newGateway(p.locals, db, nil), nil
}

// Close releases the cached remote connection and any retired ones that
// are still waiting out their grace period.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for db, timer := range p.retired {
		if timer.Stop() {
			errs = append(errs, remote.Close(db))
		}
		delete(p.retired, db)
	}
	if p.db != nil {
		errs = append(errs, remote.Close(p.db))
		p.db, p.cfg = nil, models.BackendConfig{}
	}
	return errors.Join(errs...)
}

// retireLocked drops the cached connection. Gateways handed out earlier
// keep working on it until the grace period ends.
func (p *Provider) retireLocked() {
	if p.db == nil {
		return
	}
	db := p.db
	p.db, p.cfg = nil, models.BackendConfig{}
	p.retired[db] = time.AfterFunc(p.closeGrace, func() {
		p.mu.Lock()
		delete(p.retired, db)
		p.mu.Unlock()
		if err := remote.Close(db); err != nil {
			log.Printf("⚠️ [GATEWAY] Closing replaced remote connection: %v", err)
		}
	})
}
