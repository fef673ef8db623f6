package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"standup-service/internal/gateway"
	"standup-service/internal/generation"
	"standup-service/internal/localstore"
	"standup-service/internal/remote"
	"standup-service/internal/service"
	"standup-service/internal/sse"
	"standup-service/pkg/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testToken = "test-app-token"

var validKey = strings.Repeat("k", models.MinAccessKeyLength+1)

type fakeGenerator struct {
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, req generation.Request) (*generation.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &generation.Result{
		StandupText:      "**What I did yesterday:**\n" + req.RawInput,
		ConsistencyNotes: []string{},
	}, nil
}

func (f *fakeGenerator) Refine(_ context.Context, currentText, instruction string) (*generation.Result, error) {
	return &generation.Result{StandupText: currentText + " (" + instruction + ")", ConsistencyNotes: []string{}}, nil
}

// sqliteOpener opens an in-memory database per call. migrate=false leaves
// it without tables.
func sqliteOpener(migrate bool) gateway.Opener {
	return func(models.BackendConfig) (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if migrate {
			return db, db.AutoMigrate(remote.AllModels()...)
		}
		return db, nil
	}
}

type testEnv struct {
	app *fiber.App
	h   *Handler
	gen *fakeGenerator
	kv  localstore.KV
	svc *service.StandupService
}

func newTestEnv(t *testing.T, opener gateway.Opener) *testEnv {
	t.Helper()
	if opener == nil {
		opener = sqliteOpener(true)
	}
	kv := localstore.NewMemory()
	provider := gateway.NewProvider(kv, opener, false)
	t.Cleanup(func() { provider.Close() })
	gen := &fakeGenerator{}
	svc := service.NewStandupService(kv, provider, gen, sse.NewBroker(), nil, nil)
	h := NewHandler(svc)
	app := NewApp(AppConfig{AppToken: testToken, DisableAccessLog: true}, h)
	return &testEnv{app: app, h: h, gen: gen, kv: kv, svc: svc}
}

// do sends an authorized request and decodes a JSON response into out.
func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type standupsResponse struct {
	Standups []models.Standup `json:"standups"`
}

type ticketsResponse struct {
	Tickets []models.Ticket `json:"tickets"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint"`
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != fiber.StatusOK || body["status"] != "ok" || body["mode"] != "local" {
		t.Errorf("GET /health = %d %v", resp.StatusCode, body)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/standups", nil))
	if err != nil {
		t.Fatalf("GET /api/standups: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestStandupRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	var latest struct {
		Standup *models.Standup `json:"standup"`
	}
	if code := env.do(t, "GET", "/api/standups/latest", nil, &latest); code != fiber.StatusOK || latest.Standup != nil {
		t.Fatalf("GET latest on empty history = %d %+v, want 200 null", code, latest.Standup)
	}

	var list standupsResponse
	if code := env.do(t, "GET", "/api/standups", nil, &list); code != fiber.StatusOK || list.Standups == nil || len(list.Standups) != 0 {
		t.Fatalf("GET /api/standups = %d %+v, want 200 []", code, list.Standups)
	}

	var errResp errorResponse
	if code := env.do(t, "POST", "/api/standups", models.Standup{RawInput: "x"}, &errResp); code != fiber.StatusBadRequest {
		t.Errorf("POST without output = %d, want 400", code)
	}

	older := models.Standup{ID: "a", Date: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC), GeneratedOutput: "one"}
	newer := models.Standup{ID: "b", Date: time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC), GeneratedOutput: "two"}
	for _, s := range []models.Standup{older, newer} {
		if code := env.do(t, "POST", "/api/standups", s, &list); code != fiber.StatusCreated {
			t.Fatalf("POST %s = %d, want 201", s.ID, code)
		}
	}
	if len(list.Standups) != 2 || list.Standups[0].ID != "b" {
		t.Fatalf("POST returned %+v, want newest first", list.Standups)
	}

	older.GeneratedOutput = "one, edited"
	if code := env.do(t, "PUT", "/api/standups/a", older, &list); code != fiber.StatusOK {
		t.Fatalf("PUT /api/standups/a = %d", code)
	}
	if list.Standups[1].GeneratedOutput != "one, edited" {
		t.Errorf("PUT result = %+v", list.Standups)
	}

	env.do(t, "GET", "/api/standups/latest", nil, &latest)
	if latest.Standup == nil || latest.Standup.ID != "b" {
		t.Errorf("latest = %+v, want b", latest.Standup)
	}

	if code := env.do(t, "DELETE", "/api/standups/b", nil, &list); code != fiber.StatusOK || len(list.Standups) != 1 {
		t.Errorf("DELETE = %d %+v", code, list.Standups)
	}
	// removing again is fine
	if code := env.do(t, "DELETE", "/api/standups/b", nil, &list); code != fiber.StatusOK {
		t.Errorf("second DELETE = %d, want 200", code)
	}
}

func TestExportAndRollover(t *testing.T) {
	env := newTestEnv(t, nil)

	var errResp errorResponse
	if code := env.do(t, "GET", "/api/standups/rollover", nil, &errResp); code != fiber.StatusNotFound {
		t.Errorf("rollover on empty history = %d, want 404", code)
	}

	prev := models.Standup{
		ID:              "a",
		Date:            time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		GeneratedOutput: "**What I am working on today:**\n- ship export\n\n**Blockers:**\nNone",
	}
	env.do(t, "POST", "/api/standups", prev, nil)

	var roll struct {
		RawInput string `json:"rawInput"`
	}
	if code := env.do(t, "GET", "/api/standups/rollover", nil, &roll); code != fiber.StatusOK {
		t.Fatalf("rollover = %d", code)
	}
	if want := "Yesterday: \n- ship export\n\nToday: "; roll.RawInput != want {
		t.Errorf("rollover = %q, want %q", roll.RawInput, want)
	}

	req := httptest.NewRequest("GET", "/api/standups/export", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=\"standup-history-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	recs, err := gateway.ReadExport(resp.Body)
	if err != nil || len(recs) != 1 || recs[0].ID != "a" {
		t.Errorf("export = %+v, %v", recs, err)
	}

	if code := env.do(t, "POST", "/api/standups/export/upload", nil, &errResp); code != fiber.StatusConflict {
		t.Errorf("upload without bucket = %d, want 409", code)
	}
	if code := env.do(t, "POST", "/api/standups/a/share", fiber.Map{"to": "lead@example.com"}, &errResp); code != fiber.StatusConflict {
		t.Errorf("share without SMTP = %d, want 409", code)
	}
	if code := env.do(t, "POST", "/api/standups/a/share", fiber.Map{}, &errResp); code != fiber.StatusBadRequest {
		t.Errorf("share without recipient = %d, want 400", code)
	}
}

func TestTicketRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	var tickets ticketsResponse
	if code := env.do(t, "POST", "/api/tickets", models.Ticket{TicketKey: "ENG-1", Title: "Fix login"}, &tickets); code != fiber.StatusOK {
		t.Fatalf("POST /api/tickets = %d", code)
	}
	if len(tickets.Tickets) != 1 || tickets.Tickets[0].Status != models.TicketStatusToDo {
		t.Fatalf("tickets = %+v, want one To Do ticket", tickets.Tickets)
	}

	var errResp errorResponse
	bad := models.Ticket{TicketKey: "ENG-2", Title: "x", Status: "Blocked"}
	if code := env.do(t, "POST", "/api/tickets", bad, &errResp); code != fiber.StatusBadRequest {
		t.Errorf("invalid status = %d, want 400", code)
	}

	id := tickets.Tickets[0].ID
	if code := env.do(t, "DELETE", "/api/tickets/"+id, nil, &tickets); code != fiber.StatusOK || len(tickets.Tickets) != 0 {
		t.Errorf("DELETE = %d %+v", code, tickets.Tickets)
	}
}

func TestGenerateRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	var errResp errorResponse
	if code := env.do(t, "POST", "/api/generate", fiber.Map{"rawInput": "  "}, &errResp); code != fiber.StatusBadRequest {
		t.Errorf("empty generate = %d, want 400", code)
	}

	var res generation.Result
	if code := env.do(t, "POST", "/api/generate", fiber.Map{"rawInput": "fixed the build"}, &res); code != fiber.StatusOK {
		t.Fatalf("generate = %d", code)
	}
	if !strings.Contains(res.StandupText, "fixed the build") {
		t.Errorf("StandupText = %q", res.StandupText)
	}

	env.gen.err = fmt.Errorf("%w: failed to generate standup: quota exceeded", generation.ErrGenerationFailed)
	if code := env.do(t, "POST", "/api/generate", fiber.Map{"rawInput": "x"}, &errResp); code != fiber.StatusBadGateway {
		t.Errorf("failed generate = %d, want 502", code)
	}
	if errResp.Error != env.gen.err.Error() {
		t.Errorf("error = %q, want the message verbatim", errResp.Error)
	}
	env.gen.err = nil

	if code := env.do(t, "POST", "/api/refine", fiber.Map{"currentText": "text"}, &errResp); code != fiber.StatusBadRequest {
		t.Errorf("refine without instruction = %d, want 400", code)
	}
	if code := env.do(t, "POST", "/api/refine", fiber.Map{"currentText": "text", "instruction": "shorter"}, &res); code != fiber.StatusOK {
		t.Fatalf("refine = %d", code)
	}
	if res.StandupText != "text (shorter)" {
		t.Errorf("refine StandupText = %q", res.StandupText)
	}
}

func TestSettingsAndSync(t *testing.T) {
	env := newTestEnv(t, nil)

	var errResp errorResponse
	if code := env.do(t, "POST", "/api/sync", nil, &errResp); code != fiber.StatusConflict {
		t.Errorf("sync in local mode = %d, want 409", code)
	}

	var cred service.CredentialStatus
	if code := env.do(t, "PUT", "/api/settings/credential", fiber.Map{"apiKey": ""}, &errResp); code != fiber.StatusBadRequest {
		t.Errorf("blank credential = %d, want 400", code)
	}
	if code := env.do(t, "PUT", "/api/settings/credential", fiber.Map{"apiKey": "AIza-test"}, &cred); code != fiber.StatusOK || !cred.Configured {
		t.Errorf("save credential = %d %+v", code, cred)
	}
	if code := env.do(t, "DELETE", "/api/settings/credential", nil, &cred); code != fiber.StatusOK || cred.Configured {
		t.Errorf("remove credential = %d %+v", code, cred)
	}

	env.do(t, "POST", "/api/standups", models.Standup{ID: "a", GeneratedOutput: "offline"}, nil)

	var st service.BackendStatus
	if code := env.do(t, "PUT", "/api/settings/backend", models.BackendConfig{URL: "https://abc.supabase.co", Key: validKey}, &st); code != fiber.StatusOK {
		t.Fatalf("save backend = %d", code)
	}
	if st.Mode != gateway.ModeRemote || st.Key == validKey {
		t.Errorf("backend status = %+v, want remote with masked key", st)
	}

	var res gateway.SyncResult
	if code := env.do(t, "POST", "/api/sync", nil, &res); code != fiber.StatusOK {
		t.Fatalf("sync = %d", code)
	}
	if res.StandupsSynced != 1 || len(res.Standups) != 1 {
		t.Errorf("sync result = %+v", res)
	}

	if code := env.do(t, "DELETE", "/api/settings/backend", nil, &st); code != fiber.StatusOK || st.Mode != gateway.ModeLocal {
		t.Errorf("remove backend = %d %+v", code, st)
	}

	req := httptest.NewRequest("GET", "/api/settings/backend/schema", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("GET schema: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS public.standups") {
		t.Errorf("schema body = %q", body)
	}
}

func TestSchemaMissing(t *testing.T) {
	env := newTestEnv(t, sqliteOpener(false))
	if err := localstore.SaveBackendConfig(context.Background(), env.kv, models.BackendConfig{URL: "https://abc.supabase.co", Key: validKey}); err != nil {
		t.Fatalf("SaveBackendConfig() error: %v", err)
	}

	var errResp errorResponse
	code := env.do(t, "POST", "/api/standups", models.Standup{ID: "a", GeneratedOutput: "x"}, &errResp)
	if code != fiber.StatusServiceUnavailable {
		t.Fatalf("write without tables = %d, want 503", code)
	}
	if errResp.Hint == "" {
		t.Error("503 response should carry a hint")
	}

	// reads fall back to the local store
	var list standupsResponse
	if code := env.do(t, "GET", "/api/standups", nil, &list); code != fiber.StatusOK {
		t.Errorf("read without tables = %d, want 200", code)
	}
}

// readEvent returns the next event on the stream, skipping heartbeats.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var eventType, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && eventType != "":
			return eventType, data
		}
	}
}

func TestStreamEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	env.h.heartbeat = 20 * time.Millisecond

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go env.app.Listener(ln)
	defer env.app.ShutdownWithTimeout(2 * time.Second)
	base := "http://" + ln.Addr().String()

	req, _ := stdhttp.NewRequest("GET", base+"/api/events?token="+testToken, nil)
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	eventType, data := readEvent(t, r)
	if eventType != sse.EventReady || !strings.Contains(data, `"standups":[]`) {
		t.Fatalf("first event = %s %s, want ready snapshot", eventType, data)
	}

	if _, err := env.svc.CreateStandup(context.Background(), models.Standup{ID: "a", GeneratedOutput: "live"}); err != nil {
		t.Fatalf("CreateStandup() error: %v", err)
	}
	eventType, data = readEvent(t, r)
	if eventType != sse.EventStandupsChanged || !strings.Contains(data, `"live"`) {
		t.Errorf("second event = %s %s, want standups.changed", eventType, data)
	}
}
