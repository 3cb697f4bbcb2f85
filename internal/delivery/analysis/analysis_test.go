package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
	repo "game_review/internal/repository"
	analysisuc "game_review/internal/usecase/analysis"
)

const gamePGN = `[White "Alice"]
[Black "Bob"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 *
`

type levelOracle struct{ down bool }

func (o *levelOracle) SetPosition(context.Context, domain.Position) error {
	if o.down {
		return fmt.Errorf("%w: no engine", errs.ErrOracleUnavailable)
	}
	return nil
}
func (o *levelOracle) BestMove(context.Context) (string, error) { return "e2e4", nil }
func (o *levelOracle) Evaluate(context.Context) (domain.Evaluation, error) {
	return domain.Centipawns(0), nil
}

type levelPool struct{ down bool }

func (p levelPool) Acquire(context.Context) (domain.Oracle, error) {
	return &levelOracle{down: p.down}, nil
}
func (p levelPool) Release(domain.Oracle, bool) {}

type envelope struct {
	Status int             `json:"Status"`
	Body   json.RawMessage `json:"Body"`
}

func newTestServer(t *testing.T, down bool, pageSize int) *httptest.Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	analyzer := analysisuc.NewAnalyzer(nil, analysisuc.DefaultThresholds(), 6, 14)
	uc := analysisuc.NewAnalysisUseCase(levelPool{down: down}, repo.NewMemoryCache(), analyzer, 2, log)

	r := chi.NewRouter()
	NewAnalysisHandler(bootstrap.Config{PageSize: pageSize}, log, uc).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func decodePage(t *testing.T, resp *http.Response) domain.Page {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var page domain.Page
	if err := json.Unmarshal(env.Body, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return page
}

func TestHandleAnalyzeRawBody(t *testing.T) {
	srv := newTestServer(t, false, 4)

	resp, err := http.Post(srv.URL+"/analyze", "text/plain", strings.NewReader(gamePGN))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	page := decodePage(t, resp)
	if page.TotalPages != 2 || len(page.Moves) != 4 || page.Page != 1 {
		t.Errorf("page = %d/%d with %d moves", page.Page, page.TotalPages, len(page.Moves))
	}
	if page.White != "Alice" || page.Accuracy["Bob"] != 100 {
		t.Errorf("unexpected summary: %+v", page)
	}

	resp, err = http.Get(srv.URL + "/analysis/" + page.GameHash + "?page=2")
	if err != nil {
		t.Fatal(err)
	}
	second := decodePage(t, resp)
	if len(second.Moves) != 2 || second.Moves[0].Index != 5 {
		t.Errorf("second page has %d moves", len(second.Moves))
	}
}

func TestHandleAnalyzeJSONBody(t *testing.T) {
	srv := newTestServer(t, false, 20)

	body, _ := json.Marshal(AnalyzeJSONRequest{Pgn: gamePGN})
	resp, err := http.Post(srv.URL+"/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if page := decodePage(t, resp); len(page.Moves) != 6 {
		t.Errorf("got %d moves, want 6", len(page.Moves))
	}
}

func TestHandleAnalyzeUpload(t *testing.T) {
	srv := newTestServer(t, false, 20)

	upload := func(name string) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile(uploadField, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(gamePGN))
		mw.Close()

		resp, err := http.Post(srv.URL+"/analyze", mw.FormDataContentType(), &buf)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := upload("game.pgn")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("upload status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = upload("game.txt")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-pgn upload status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandleAnalyzeErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		down bool
		body string
		want int
	}{
		{"empty body", false, "  ", http.StatusBadRequest},
		{"malformed record", false, "1. e4 e5 2. Qxe9 *", http.StatusBadRequest},
		{"engine down", true, gamePGN, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.down, 20)
			resp, err := http.Post(srv.URL+"/analyze", "text/plain", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHandleGetAnalysisNotFound(t *testing.T) {
	srv := newTestServer(t, false, 20)

	resp, err := http.Get(srv.URL + "/analysis/deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/analysis/deadbeef?page=zero")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad page status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleReport(t *testing.T) {
	srv := newTestServer(t, false, 20)

	resp, err := http.Post(srv.URL+"/analyze", "text/plain", strings.NewReader(gamePGN))
	if err != nil {
		t.Fatal(err)
	}
	hash := decodePage(t, resp).GameHash

	resp, err = http.Get(srv.URL + "/analysis/" + hash + "/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("report is not a PDF")
	}
}

func TestHandleAnalyzeStream(t *testing.T) {
	srv := newTestServer(t, false, 20)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/analyze/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err = conn.WriteMessage(websocket.TextMessage, []byte(gamePGN)); err != nil {
		t.Fatal(err)
	}

	progress := 0
	for {
		var ev StreamEvent
		if err = conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		if ev.Type == "progress" {
			progress++
			continue
		}
		if ev.Type != "result" || ev.Result == nil {
			t.Fatalf("unexpected event %+v", ev)
		}
		if len(ev.Result.Moves) != 6 {
			t.Errorf("result has %d moves", len(ev.Result.Moves))
		}
		break
	}
	if progress != 6 {
		t.Errorf("got %d progress events, want 6", progress)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, false, 20)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHandleAnalyzeGameWithoutMoves(t *testing.T) {
	srv := newTestServer(t, false, 20)

	resp, err := http.Post(srv.URL+"/analyze", "text/plain", strings.NewReader("[White \"Ann\"]\n[Black \"Ben\"]\n\n*"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	page := decodePage(t, resp)
	if len(page.Moves) != 0 || page.TotalPages != 0 {
		t.Errorf("page = %d moves over %d pages", len(page.Moves), page.TotalPages)
	}
	if page.Accuracy["Ann"] != 0 || page.Accuracy["Ben"] != 0 {
		t.Errorf("Accuracy = %v, want zeros", page.Accuracy)
	}
}

func TestRequestIDComesFromMiddleware(t *testing.T) {
	log := zap.NewNop().Sugar()
	analyzer := analysisuc.NewAnalyzer(nil, analysisuc.DefaultThresholds(), 6, 14)
	uc := analysisuc.NewAnalysisUseCase(levelPool{}, repo.NewMemoryCache(), analyzer, 1, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	NewAnalysisHandler(bootstrap.Config{PageSize: 20}, log, uc).Routes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/analysis/missing", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want the middleware id", got)
	}
}
