package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"standup-service/internal/email"
	"standup-service/internal/gateway"
	"standup-service/internal/generation"
	"standup-service/internal/localstore"
	"standup-service/internal/sse"
	"standup-service/pkg/models"
	"standup-service/utils"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrExportDisabled is returned by UploadExport without a configured bucket.
	ErrExportDisabled = errors.New("export bucket is not configured")
)

// StandupService is what the HTTP layer drives. Every mutation returns the
// refreshed collection and broadcasts it to event subscribers.
type StandupService struct {
	kv       localstore.KV
	provider *gateway.Provider
	gen      generation.Client
	broker   *sse.Broker
	sender   *email.Sender
	bucket   *utils.ExportBucket

	now func() time.Time
}

// NewStandupService wires the service. sender and bucket may be nil when
// those integrations are disabled.
func NewStandupService(kv localstore.KV, provider *gateway.Provider, gen generation.Client, broker *sse.Broker, sender *email.Sender, bucket *utils.ExportBucket) *StandupService {
	return &StandupService{
		kv:       kv,
		provider: provider,
		gen:      gen,
		broker:   broker,
		sender:   sender,
		bucket:   bucket,
		now:      time.Now,
	}
}

func (s *StandupService) Broker() *sse.Broker { return s.broker }

func (s *StandupService) Gateway(ctx context.Context) (*gateway.Gateway, error) {
	return s.provider.Gateway(ctx)
}

func (s *StandupService) publish(eventType string, data interface{}) {
	if s.broker != nil {
		s.broker.Broadcast(sse.Event{Type: eventType, Data: data})
	}
}

// --- Standups ---

func (s *StandupService) ListStandups(ctx context.Context) ([]models.Standup, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	return g.Standups.List(ctx)
}

func (s *StandupService) LatestStandup(ctx context.Context) (*models.Standup, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	return g.Standups.Latest(ctx)
}

func (s *StandupService) CreateStandup(ctx context.Context, rec models.Standup) ([]models.Standup, error) {
	return s.mutateStandups(ctx, func(g *gateway.Gateway) ([]models.Standup, error) {
		return g.Standups.Create(ctx, rec)
	})
}

func (s *StandupService) UpdateStandup(ctx context.Context, rec models.Standup) ([]models.Standup, error) {
	return s.mutateStandups(ctx, func(g *gateway.Gateway) ([]models.Standup, error) {
		return g.Standups.Update(ctx, rec)
	})
}

func (s *StandupService) RemoveStandup(ctx context.Context, id string) ([]models.Standup, error) {
	return s.mutateStandups(ctx, func(g *gateway.Gateway) ([]models.Standup, error) {
		return g.Standups.Remove(ctx, id)
	})
}

func (s *StandupService) mutateStandups(ctx context.Context, fn func(*gateway.Gateway) ([]models.Standup, error)) ([]models.Standup, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	list, err := fn(g)
	if err != nil {
		return nil, err
	}
	s.publish(sse.EventStandupsChanged, list)
	return list, nil
}

// FindStandup returns the standup with id from the current history.
func (s *StandupService) FindStandup(ctx context.Context, id string) (*models.Standup, error) {
	list, err := s.ListStandups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("standup %q: %w", id, ErrNotFound)
}

func (s *StandupService) Rollover(ctx context.Context) (string, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return "", err
	}
	return g.Rollover(ctx)
}

// --- Tickets ---

func (s *StandupService) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	return g.Tickets.List(ctx)
}

func (s *StandupService) SaveTicket(ctx context.Context, t models.Ticket) ([]models.Ticket, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	list, err := g.Tickets.Save(ctx, t)
	if err != nil {
		return nil, err
	}
	s.publish(sse.EventTicketsChanged, list)
	return list, nil
}

func (s *StandupService) RemoveTicket(ctx context.Context, id string) ([]models.Ticket, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	list, err := g.Tickets.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(sse.EventTicketsChanged, list)
	return list, nil
}

// --- Sync & export ---

// Sync moves local records to the remote store. The result is returned
// even when one collection failed.
func (s *StandupService) Sync(ctx context.Context) (*gateway.SyncResult, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	res, err := g.Sync(ctx)
	if res == nil {
		return nil, err
	}
	if res.Synced() > 0 {
		s.publish(sse.EventStandupsChanged, res.Standups)
		if tickets, terr := g.Tickets.List(ctx); terr == nil {
			s.publish(sse.EventTicketsChanged, tickets)
		}
	}
	return res, err
}

// Export writes the history document to w and returns its file name.
func (s *StandupService) Export(ctx context.Context, w io.Writer) (string, error) {
	g, err := s.Gateway(ctx)
	if err != nil {
		return "", err
	}
	n, err := g.Export(ctx, w)
	if err != nil {
		return "", err
	}
	log.Printf("📦 [EXPORT] Exported %d standups from %s store", n, g.Mode())
	return gateway.ExportFilename(s.now()), nil
}

type UploadedExport struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func (s *StandupService) UploadExport(ctx context.Context) (*UploadedExport, error) {
	if s.bucket == nil {
		return nil, ErrExportDisabled
	}
	var buf bytes.Buffer
	filename, err := s.Export(ctx, &buf)
	if err != nil {
		return nil, err
	}
	url, err := s.bucket.UploadExport(ctx, filename, buf.Bytes())
	if err != nil {
		log.Printf("❌ [EXPORT] Upload failed: %v", err)
		return nil, err
	}
	log.Printf("✅ [EXPORT] Uploaded %s", url)
	return &UploadedExport{Filename: filename, URL: url}, nil
}

// ShareStandup emails the standup with id to one recipient.
func (s *StandupService) ShareStandup(ctx context.Context, id, to string) error {
	if s.sender == nil {
		return email.ErrNotConfigured
	}
	standup, err := s.FindStandup(ctx, id)
	if err != nil {
		return err
	}
	return s.sender.SendStandup(ctx, to, *standup)
}

// --- Generation ---

type GenerateInput struct {
	RawInput string `json:"rawInput"`
	// nil means use the latest saved standup
	PreviousContext *string  `json:"previousContext,omitempty"`
	TicketIDs       []string `json:"ticketIds,omitempty"`
}

func (s *StandupService) Generate(ctx context.Context, in GenerateInput) (*generation.Result, error) {
	req := generation.Request{RawInput: in.RawInput}

	if in.PreviousContext != nil {
		req.PreviousContext = *in.PreviousContext
	} else if latest, err := s.LatestStandup(ctx); err != nil {
		log.Printf("⚠️ [GENERATE] Could not load previous standup: %v", err)
	} else if latest != nil {
		req.PreviousContext = latest.GeneratedOutput
	}

	if len(in.TicketIDs) > 0 {
		tickets, err := s.ListTickets(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]models.Ticket, len(tickets))
		for _, t := range tickets {
			byID[t.ID] = t
		}
		for _, id := range in.TicketIDs {
			t, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: unknown ticket %q", models.ErrValidation, id)
			}
			req.SelectedTickets = append(req.SelectedTickets, t)
		}
	}

	return s.gen.Generate(ctx, req)
}

func (s *StandupService) Refine(ctx context.Context, currentText, instruction string) (*generation.Result, error) {
	if strings.TrimSpace(currentText) == "" {
		return nil, fmt.Errorf("%w: current text is required", models.ErrValidation)
	}
	return s.gen.Refine(ctx, currentText, instruction)
}

// --- Settings ---

type CredentialStatus struct {
	Configured bool `json:"configured"`
}

func (s *StandupService) CredentialStatus(ctx context.Context) (*CredentialStatus, error) {
	key, err := localstore.Credential(ctx, s.kv)
	if err != nil {
		return nil, err
	}
	return &CredentialStatus{Configured: key != ""}, nil
}

func (s *StandupService) SaveCredential(ctx context.Context, apiKey string) error {
	return localstore.SaveCredential(ctx, s.kv, apiKey)
}

func (s *StandupService) RemoveCredential(ctx context.Context) error {
	return localstore.RemoveCredential(ctx, s.kv)
}

type BackendStatus struct {
	Mode       gateway.Mode `json:"mode"`
	Configured bool         `json:"configured"`
	URL        string       `json:"url,omitempty"`
	Key        string       `json:"key,omitempty"` // masked
	LastSync   *time.Time   `json:"lastSync,omitempty"`
}

func (s *StandupService) BackendStatus(ctx context.Context) (*BackendStatus, error) {
	cfg, err := localstore.LoadBackendConfig(ctx, s.kv)
	if err != nil {
		return nil, err
	}
	g, err := s.Gateway(ctx)
	if err != nil {
		return nil, err
	}
	st := &BackendStatus{Mode: g.Mode(), Configured: cfg.IsConfigured()}
	if cfg != nil {
		st.URL, st.Key = cfg.URL, cfg.MaskedKey()
	}
	if g.Mode() == gateway.ModeRemote {
		if last, err := g.LastSync(ctx); err != nil {
			log.Printf("⚠️ [SETTINGS] Could not read last sync: %v", err)
		} else if !last.IsZero() {
			st.LastSync = &last
		}
	}
	return st, nil
}

// SaveBackendConfig stores cfg. The next request picks it up.
func (s *StandupService) SaveBackendConfig(ctx context.Context, cfg models.BackendConfig) (*BackendStatus, error) {
	if err := localstore.SaveBackendConfig(ctx, s.kv, cfg); err != nil {
		return nil, err
	}
	if !cfg.IsConfigured() {
		log.Printf("⚠️ [SETTINGS] Backend key %s is too short, staying in local mode", cfg.MaskedKey())
	}
	return s.BackendStatus(ctx)
}

func (s *StandupService) RemoveBackendConfig(ctx context.Context) (*BackendStatus, error) {
	if err := localstore.RemoveBackendConfig(ctx, s.kv); err != nil {
		return nil, err
	}
	return s.BackendStatus(ctx)
}
