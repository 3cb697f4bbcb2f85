package analysis

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"game_review/internal/bootstrap"
	domain "game_review/internal/domain/analysis"
	errs "game_review/internal/errors"
	"game_review/internal/httpresponse"
	analysisuc "game_review/internal/usecase/analysis"
	"game_review/internal/usecase/report"
	"game_review/internal/utils"
)

const uploadField = "pgnfile"

type AnalyzeJSONRequest struct {
	Pgn string `json:"pgn"`
}

// StreamEvent is one websocket message of a streamed analysis.
type StreamEvent struct {
	Type   string               `json:"type"`
	Done   int                  `json:"done,omitempty"`
	Total  int                  `json:"total,omitempty"`
	Move   *domain.MoveAnalysis `json:"move,omitempty"`
	Result *domain.Page         `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

type AnalysisHandler struct {
	cfg        bootstrap.Config
	log        *zap.SugaredLogger
	analysisUC *analysisuc.AnalysisUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewAnalysisHandler(cfg bootstrap.Config, log *zap.SugaredLogger, analysisUC *analysisuc.AnalysisUseCase) *AnalysisHandler {
	return &AnalysisHandler{
		cfg:        cfg,
		log:        log,
		analysisUC: analysisUC,
	}
}

// HandleAnalyze accepts a raw PGN body, a JSON {"pgn": ...} body or a
// multipart upload in the pgnfile field, and answers with the first page.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(w, r)

	record, status, err := readRecord(w, r)
	if err != nil {
		log.Infow("rejected analysis request", "error", err)
		httpresponse.WriteErrorResponse(w, status, err.Error())
		return
	}

	result, err := h.analysisUC.AnalyzeGame(r.Context(), record, nil)
	if err != nil {
		h.writeAnalysisError(w, log, err)
		return
	}

	log.Infow("analysis served", "game_hash", result.GameHash, "plies", len(result.Moves))
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, analysisuc.PageOf(result, 1, h.cfg.PageSize))
}

func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(w, r)
	hash := chi.URLParam(r, "hash")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	result, err := h.analysisUC.GetAnalysis(r.Context(), hash)
	if err != nil {
		h.writeAnalysisError(w, log, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, analysisuc.PageOf(result, page, h.cfg.PageSize))
}

func (h *AnalysisHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(w, r)
	hash := chi.URLParam(r, "hash")

	result, err := h.analysisUC.GetAnalysis(r.Context(), hash)
	if err != nil {
		h.writeAnalysisError(w, log, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", hash+".pdf"))
	if err = report.WritePDF(w, result); err != nil {
		log.Errorw("pdf report failed", "game_hash", hash, "error", err)
	}
}

// HandleAnalyzeStream reads one PGN text message and streams a progress
// event per finished ply, then the first page of the result.
func (h *AnalysisHandler) HandleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(w, r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(utils.MaxRecordBytes)
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Infow("websocket closed before a record arrived", "error", err)
		return
	}

	var mu sync.Mutex
	send := func(ev StreamEvent) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(ev); err != nil {
			log.Debugw("websocket write failed", "error", err)
		}
	}

	progress := func(done, total int, move domain.MoveAnalysis) {
		send(StreamEvent{Type: "progress", Done: done, Total: total, Move: &move})
	}

	result, err := h.analysisUC.AnalyzeGame(r.Context(), string(msg), progress)
	if err != nil {
		log.Errorw("streamed analysis failed", "error", err)
		send(StreamEvent{Type: "error", Error: err.Error()})
		return
	}

	page := analysisuc.PageOf(result, 1, h.cfg.PageSize)
	send(StreamEvent{Type: "result", Result: &page})
}

func (h *AnalysisHandler) Routes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/analyze", h.HandleAnalyze)
	r.Get("/analyze/ws", h.HandleAnalyzeStream)
	r.Get("/analysis/{hash}", h.HandleGetAnalysis)
	r.Get("/analysis/{hash}/report.pdf", h.HandleReport)
}

func (h *AnalysisHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger tags the log with the id chi's RequestID middleware
// assigned, minting one when the handler is mounted without it.
func (h *AnalysisHandler) requestLogger(w http.ResponseWriter, r *http.Request) *zap.SugaredLogger {
	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set("X-Request-ID", requestID)
	return h.log.With("request_id", requestID)
}

func (h *AnalysisHandler) writeAnalysisError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorw("analysis request failed", "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	log.Warnw("analysis request failed", "status", status, "error", err)
	httpresponse.WriteErrorResponse(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMalformedGameRecord):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrOracleUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrAnalysisNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func readRecord(w http.ResponseWriter, r *http.Request) (string, int, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, utils.MaxRecordBytes+1<<10)
		file, header, err := r.FormFile(uploadField)
		if err != nil {
			return "", http.StatusBadRequest, fmt.Errorf("missing %s upload: %w", uploadField, err)
		}
		defer file.Close()
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pgn") {
			return "", http.StatusBadRequest, fmt.Errorf("%s must be a .pgn file", uploadField)
		}
		body, err := io.ReadAll(io.LimitReader(file, utils.MaxRecordBytes+1))
		if err != nil {
			return "", http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err)
		}
		return checkRecord(body)

	case "application/json":
		var req AnalyzeJSONRequest
		if err := utils.DecodeJSONRequest(r, &req); err != nil {
			return "", http.StatusBadRequest, err
		}
		if strings.TrimSpace(req.Pgn) == "" {
			return "", http.StatusBadRequest, fmt.Errorf("pgn is required")
		}
		return req.Pgn, 0, nil
	}

	body, err := utils.ReadRequestBody(r)
	if err != nil {
		return "", http.StatusBadRequest, fmt.Errorf("failed to read record: %w", err)
	}
	return checkRecord(body)
}

func checkRecord(body []byte) (string, int, error) {
	if len(body) > utils.MaxRecordBytes {
		return "", http.StatusRequestEntityTooLarge, fmt.Errorf("record exceeds %d bytes", utils.MaxRecordBytes)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", http.StatusBadRequest, fmt.Errorf("empty record")
	}
	return string(body), 0, nil
}
