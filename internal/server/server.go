package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/feed-blend/internal/blend"
	"github.com/iwvelando/feed-blend/internal/config"
	"github.com/iwvelando/feed-blend/internal/history"
	"github.com/iwvelando/feed-blend/pkg/constants"
	"github.com/iwvelando/feed-blend/pkg/output"
	"github.com/iwvelando/feed-blend/pkg/pearson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

// HistoryStore records solved blend requests. *history.Store implements it.
type HistoryStore interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Get(ctx context.Context, id string) (history.Entry, error)
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	history       HistoryStore
}

// NewHandler constructs the HTTP handler that serves the web UI and blend API.
// store may be nil, in which case requests are not recorded and the history
// endpoint answers 404.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, store HistoryStore) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, history: store}

	mux := http.NewServeMux()

	// Single blend from the web form
	mux.HandleFunc("/api/blend", h.handleBlend)

	// Every blend of an uploaded configuration file
	mux.HandleFunc("/api/config", h.handleConfig)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/history/{id}", h.handleHistoryEntry)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

// BlendRequest is the body of POST /api/blend.
type BlendRequest struct {
	Ingredients []pearson.Ingredient `json:"ingredients"`
	Target      *float64             `json:"target"`
	FinalWeight *float64             `json:"finalWeight"`
	Unit        string               `json:"unit,omitempty"`
}

// BlendResponse is the body of a successful POST /api/blend.
type BlendResponse struct {
	output.BlendJSON
	ID       string `json:"id,omitempty"`
	Duration string `json:"duration"`
}

// ErrorResponse is the body of every failed request. The embedded details are
// present for blend errors only.
type ErrorResponse struct {
	Error string `json:"error"`
	*output.ErrorJSON
}

type configResponse struct {
	Blends     []output.BlendJSON     `json:"blends"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Failed     int                    `json:"failed"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (h *handler) handleBlend(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBlend"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req BlendRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode blend request: %v", err), op)
		return
	}
	if req.Target == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing target", op)
		return
	}
	if req.FinalWeight == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing finalWeight", op)
		return
	}

	solver := pearson.NewSolver(h.logger, strings.TrimSpace(req.Unit))
	result, err := solver.Solve(req.Ingredients, *req.Target, *req.FinalWeight)

	b := blend.Blend{
		Name:        "blend",
		Unit:        solver.Unit(),
		Target:      *req.Target,
		FinalWeight: *req.FinalWeight,
		Ingredients: req.Ingredients,
		Result:      result,
		Err:         err,
	}

	id := h.record(r.Context(), b, op)

	if err != nil {
		h.respondBlendError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("blend computed",
		zap.String("op", op),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Float64("target", *req.Target),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, BlendResponse{
		BlendJSON: output.ToJSON(b),
		ID:        id,
		Duration:  elapsed.String(),
	})
}

// record stores the request in history when a store is configured. Storage
// failures are logged and never fail the request.
func (h *handler) record(ctx context.Context, b blend.Blend, op string) string {
	if h.history == nil {
		return ""
	}
	entry := history.NewEntry(b.Ingredients, b.Target, b.FinalWeight, b.Unit, b.Result, output.ErrorKind(b.Err), b.Err)
	saved, err := h.history.Record(ctx, entry)
	if err != nil {
		h.logger.Warn("failed to record blend history",
			zap.String("op", op),
			zap.Error(err),
		)
		return ""
	}
	h.logger.Debug("blend recorded",
		zap.String("op", op),
		zap.String("id", saved.ID),
		zap.Bool("failed", saved.Failed()),
	)
	return saved.ID
}

func (h *handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfig"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	blends := blend.GetBlends(h.logger, *cfg)

	jsonBlends := make([]output.BlendJSON, 0, len(blends))
	for _, b := range blends {
		jsonBlends = append(jsonBlends, output.ToJSON(b))
	}

	elapsed := time.Since(start)
	response := configResponse{
		Blends:     jsonBlends,
		CSV:        output.CsvString(blends),
		Warnings:   warnings,
		Failed:     blend.Failed(blends),
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("configuration blends computed",
		zap.String("op", op),
		zap.Int("blends", len(blends)),
		zap.Int("failed", response.Failed),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHistory"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.history == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "history is not enabled", op)
		return
	}

	limit := constants.DefaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw), op)
			return
		}
		limit = parsed
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read history: %v", err), op)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	h.writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}

func (h *handler) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHistoryEntry"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.history == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "history is not enabled", op)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	entry, err := h.history.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("history entry %q not found", id), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read history: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, entry)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes the well-known top-level keys first, in
// file order, followed by any others alphabetically.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "unit", "blends"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, item := range o.items {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item.key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

// respondBlendError maps solver errors to 422 for well-formed but unsolvable
// blends and 400 for malformed input.
func (h *handler) respondBlendError(w http.ResponseWriter, err error, op string) {
	details := output.NewErrorJSON(err)

	status := http.StatusInternalServerError
	switch details.Kind {
	case output.KindUnsolvableBlend, output.KindDegenerateInput:
		status = http.StatusUnprocessableEntity
	case output.KindInvalidInput:
		status = http.StatusBadRequest
	}

	h.logger.Info("blend rejected",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("kind", details.Kind),
		zap.Error(err),
	)

	h.writeJSON(w, status, ErrorResponse{Error: details.Message, ErrorJSON: details})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
