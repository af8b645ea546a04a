package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"vellum/internal/api"
	"vellum/internal/config"
	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/services"
)

type apiServer struct {
	bind     string
	token    string
	logger   *slog.Logger
	daemon   *Daemon
	queueSvc *api.QueueService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:     bind,
		token:    strings.TrimSpace(cfg.Paths.APIToken),
		logger:   logger,
		daemon:   d,
		queueSvc: d.queueSvc,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(srv.token, srv.handleStatus))
	mux.HandleFunc("/api/queue", authMiddleware(srv.token, srv.handleQueue))
	mux.HandleFunc("/api/queue/", authMiddleware(srv.token, srv.handleQueueItem))
	mux.HandleFunc("/api/generate", authMiddleware(srv.token, srv.handleGenerate))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		Workflow:     api.FromStatusSummary(status.Workflow),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.queueSvc == nil {
		s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: nil})
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		parsed, ok := queue.ParseStatus(value)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}

	items, err := s.queueSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: items})
}

func (s *apiServer) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}

	if idStr, ok := strings.CutSuffix(rest, "/retry"); ok {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id, err := parseQueueItemID(idStr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid queue item id")
			return
		}
		s.retryQueueItem(w, r, id)
		return
	}

	id, err := parseQueueItemID(rest)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid queue item id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.describeQueueItem(w, r, id)
	case http.MethodDelete:
		s.removeQueueItem(w, r, id)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func parseQueueItemID(raw string) (int64, error) {
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("invalid queue item id %q", raw)
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *apiServer) describeQueueItem(w http.ResponseWriter, r *http.Request, id int64) {
	if s.queueSvc == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	item, err := s.queueSvc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueItemResponse{Item: *item})
}

func (s *apiServer) retryQueueItem(w http.ResponseWriter, r *http.Request, id int64) {
	result, err := api.RetryItemsByID(r.Context(), daemonQueueAccess{s.daemon}, []int64{id})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(result.Items) != 1 {
		s.writeError(w, http.StatusInternalServerError, "unexpected retry result")
		return
	}
	outcome := result.Items[0]
	switch outcome.Outcome {
	case api.RetryItemNotFound:
		s.writeError(w, http.StatusNotFound, "queue item not found")
	case api.RetryItemNotEligible:
		s.writeError(w, http.StatusConflict, "queue item is not awaiting retry")
	default:
		s.writeJSON(w, http.StatusOK, outcome)
	}
}

func (s *apiServer) removeQueueItem(w http.ResponseWriter, r *http.Request, id int64) {
	result, err := api.RemoveItemsByID(r.Context(), daemonQueueAccess{s.daemon}, []int64{id})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(result.Items) != 1 {
		s.writeError(w, http.StatusInternalServerError, "unexpected remove result")
		return
	}
	outcome := result.Items[0]
	if outcome.Outcome == api.RemoveItemNotFound {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "request body unreadable")
		return
	}
	item, err := s.daemon.Submit(r.Context(), payload)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.SubmitResponse{
		ID:        item.ID,
		Reference: item.Reference,
		Status:    string(item.Status),
	})
}

// daemonQueueAccess adapts the daemon facade to the per-item queue action
// services so HTTP handlers report precise outcomes.
type daemonQueueAccess struct {
	daemon *Daemon
}

func (a daemonQueueAccess) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	return a.daemon.DescribeQueueItem(ctx, id)
}

func (a daemonQueueAccess) Retry(ctx context.Context, ids []int64) (int64, error) {
	return a.daemon.RetryFailed(ctx, ids)
}

func (a daemonQueueAccess) Stop(ctx context.Context, ids []int64) (int64, error) {
	return a.daemon.StopQueueItems(ctx, ids)
}

func (a daemonQueueAccess) Remove(ctx context.Context, ids []int64) (int64, error) {
	return a.daemon.RemoveQueueItems(ctx, ids)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
