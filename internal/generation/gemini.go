package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"standup-service/internal/localstore"

	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultRefineModel = "gemini-3-pro-preview"
)

var errNoCredential = errors.New("Gemini API key is not configured. Please add your API key in settings.")

// Gemini is the Client backed by the Gemini API via the genai SDK. The API key is
// read from the local store on every call, so a key saved in settings takes
// effect immediately.
type Gemini struct {
	kv          localstore.KV
	model       string
	refineModel string
	// empty means the SDK default endpoint
	baseURL string
	now     func() time.Time
}

func NewGemini(kv localstore.KV, model, refineModel string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if refineModel == "" {
		refineModel = DefaultRefineModel
	}
	return &Gemini{kv: kv, model: model, refineModel: refineModel, now: time.Now}
}

func (g *Gemini) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.RawInput) == "" && len(req.SelectedTickets) == 0 {
		return nil, fmt.Errorf("%w: nothing to generate from, add notes or select tickets", ErrGenerationFailed)
	}
	res, err := g.call(ctx, g.model, systemInstruction, generatePrompt(req, g.now()))
	if err != nil {
		log.Printf("❌ [GEMINI] Generate failed: %v", err)
		return nil, fmt.Errorf("%w: failed to generate standup: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(res.StandupText) == "" {
		log.Println("❌ [GEMINI] Generate returned an empty standup")
		return nil, fmt.Errorf("%w: failed to generate standup: empty response", ErrGenerationFailed)
	}
	return res, nil
}

func (g *Gemini) Refine(ctx context.Context, currentText, instruction string) (*Result, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("%w: refine instruction is empty", ErrGenerationFailed)
	}
	res, err := g.call(ctx, g.refineModel, refineInstruction, refinePrompt(currentText, instruction))
	if err != nil {
		log.Printf("❌ [GEMINI] Refine failed: %v", err)
		return nil, fmt.Errorf("%w: failed to update standup: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(res.StandupText) == "" {
		res.StandupText = currentText
	}
	return res, nil
}

// call sends one prompt and decodes the JSON answer.
func (g *Gemini) call(ctx context.Context, model, system, prompt string) (*Result, error) {
	apiKey, err := localstore.Credential(ctx, g.kv)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if apiKey == "" {
		return nil, errNoCredential
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			return nil, fmt.Errorf("gemini returned %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, err
	}

	return decodeResult(responseText(resp))
}

// asAPIError unwraps an upstream error response from the SDK.
func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// decodeResult parses the model's JSON answer. Code fences around the
// object are tolerated.
func decodeResult(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		text = "{}"
	}

	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if res.ConsistencyNotes == nil {
		res.ConsistencyNotes = []string{}
	}
	return &res, nil
}
