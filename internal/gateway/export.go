package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"standup-service/pkg/models"
)

// ExportFilename names an export taken on day now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("standup-history-%s.json", now.Format("2006-01-02"))
}

// Export writes the current standup history to w as an indented JSON array
// and returns how many standups it wrote.
func (g *Gateway) Export(ctx context.Context, w io.Writer) (int, error) {
	recs, err := g.Standups.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := WriteExport(w, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func WriteExport(w io.Writer, recs []models.Standup) error {
	if recs == nil {
		recs = []models.Standup{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("gateway: write export: %w", err)
	}
	return nil
}

// ReadExport parses a document produced by WriteExport.
func ReadExport(r io.Reader) ([]models.Standup, error) {
	var recs []models.Standup
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("gateway: read export: %w", err)
	}
	for i := range recs {
		recs[i] = recs[i].Normalized()
	}
	return recs, nil
}
