package gateway

import (
	"errors"
	"fmt"
	"log"

	"standup-service/internal/remote"
	"standup-service/pkg/models"
)

var (
	// ErrNotConfigured is returned by remote-only operations (Sync) while the
	// gateway runs against the local store.
	ErrNotConfigured = errors.New("gateway: remote backend is not configured")

	// ErrBackendUnavailable covers every failed remote request: network,
	// rejected access key, missing table.
	ErrBackendUnavailable = errors.New("gateway: remote backend unavailable")

	// ErrSchemaMissing is the subset of ErrBackendUnavailable where the
	// remote table does not exist yet.
	ErrSchemaMissing = errors.New("gateway: remote table missing, run the setup SQL")

	// ErrNoHistory is returned by Rollover when there is nothing to roll over.
	ErrNoHistory = errors.New("gateway: no standup history")
)

// BackendError describes one failed remote operation. It matches
// ErrBackendUnavailable, and ErrSchemaMissing when the table is missing.
type BackendError struct {
	Op         string
	Collection string
	Err        error

	schemaMissing bool
}

func (e *BackendError) Error() string {
	if e.schemaMissing {
		return fmt.Sprintf("gateway: %s %s: table missing: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("gateway: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrBackendUnavailable:
		return true
	case ErrSchemaMissing:
		return e.schemaMissing
	}
	return false
}

// SchemaMissing reports whether the remote table was missing.
func (e *BackendError) SchemaMissing() bool { return e.schemaMissing }

// backendError classifies and logs a remote failure. A duplicate key comes
// back as ErrValidation, matching the local store.
func backendError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	if remote.IsUniqueViolation(err) {
		log.Printf("⚠️ [REMOTE] Duplicate id while trying to %s %s", op, collection)
		return fmt.Errorf("%w: %s %s: record already exists", models.ErrValidation, op, collection)
	}
	be = &BackendError{Op: op, Collection: collection, Err: err}
	switch {
	case remote.IsUndefinedTable(err):
		be.schemaMissing = true
		log.Printf("⚠️ [REMOTE] Table missing for %s %s. Run the setup SQL (GET /api/settings/backend/schema).", op, collection)
	case remote.IsAuthFailure(err):
		log.Printf("❌ [REMOTE] Invalid access key while trying to %s %s", op, collection)
	default:
		log.Printf("❌ [REMOTE] Error trying to %s %s: %v", op, collection, err)
	}
	return be
}
