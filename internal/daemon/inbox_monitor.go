package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"

	"vellum/internal/api"
	"vellum/internal/config"
	"vellum/internal/logging"
	"vellum/internal/notifications"
	"vellum/internal/queue"
	"vellum/internal/services"
)

// inboxMonitor watches the inbox directory for contract request files and
// enqueues them. Processed files move to inbox/processed, rejected files to
// inbox/rejected, so the inbox itself only ever holds unhandled requests.
type inboxMonitor struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	notifier notifications.Service

	dir         string
	settleDelay time.Duration
	rescanEvery time.Duration

	// pending tracks files seen but not yet processed, keyed by path with
	// the time of the last filesystem event. Only the run goroutine touches
	// it once the monitor starts.
	pending map[string]time.Time

	mu      sync.Mutex
	running bool
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func newInboxMonitor(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *inboxMonitor {
	if cfg == nil || store == nil {
		return nil
	}
	dir := strings.TrimSpace(cfg.Paths.InboxDir)
	if dir == "" {
		return nil
	}

	rescan := time.Duration(cfg.Workflow.InboxRescanSeconds) * time.Second
	if rescan <= 0 {
		rescan = 60 * time.Second
	}

	return &inboxMonitor{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "inbox-monitor"),
		store:       store,
		notifier:    notifier,
		dir:         dir,
		settleDelay: 500 * time.Millisecond,
		rescanEvery: rescan,
		pending:     make(map[string]time.Time),
	}
}

// Start begins watching the inbox directory. A periodic rescan backs up the
// filesystem events so files dropped while the daemon was down are still
// picked up.
func (m *inboxMonitor) Start(ctx context.Context) error {
	if m == nil {
		return errors.New("inbox monitor unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("inbox monitor already running")
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(m.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.watcher = watcher
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.run(runCtx, watcher)

	m.logger.Info("inbox monitor started",
		logging.String("inbox", m.dir),
		logging.String(logging.FieldEventType, "inbox_monitor_started"))
	return nil
}

// Stop shuts down the monitor and waits for in-flight processing to finish.
func (m *inboxMonitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	watcher := m.watcher
	m.running = false
	m.cancel = nil
	m.watcher = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		_ = watcher.Close()
	}
	m.wg.Wait()
}

func (m *inboxMonitor) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer m.wg.Done()

	settle := time.NewTicker(time.Second)
	defer settle.Stop()
	rescan := time.NewTicker(m.rescanEvery)
	defer rescan.Stop()

	m.scanInbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			m.observe(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("inbox watch error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "inbox_watch_error"),
				logging.String(logging.FieldErrorHint, "check inbox directory permissions; the periodic rescan still runs"))
		case <-settle.C:
			m.processSettled(ctx)
		case <-rescan.C:
			m.scanInbox(ctx)
		}
	}
}

// observe records a filesystem event for a request file. Processing waits for
// the settle delay so half-written files are not parsed mid-copy.
func (m *inboxMonitor) observe(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !isRequestFile(event.Name) {
		return
	}
	m.pending[event.Name] = time.Now()
}

func isRequestFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// scanInbox sweeps the whole directory and processes every request file.
// Files already pending keep their event time so the settle delay holds.
func (m *inboxMonitor) scanInbox(ctx context.Context) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.logger.Warn("inbox scan failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "inbox_scan_failed"),
			logging.String(logging.FieldErrorHint, "check that the inbox directory exists and is readable"))
		return
	}
	eligible := time.Now().Add(-m.settleDelay)
	for _, entry := range entries {
		if entry.IsDir() || !isRequestFile(entry.Name()) {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if _, seen := m.pending[path]; !seen {
			m.pending[path] = eligible
		}
	}
	m.processSettled(ctx)
}

// processSettled handles every pending file whose last event is older than
// the settle delay.
func (m *inboxMonitor) processSettled(ctx context.Context) {
	if len(m.pending) == 0 {
		return
	}
	cutoff := time.Now().Add(-m.settleDelay)
	for path, seen := range m.pending {
		if seen.After(cutoff) {
			continue
		}
		delete(m.pending, path)
		m.process(ctx, path)
	}
}

// process reads one request file, enqueues it, and archives the file.
// Transient failures leave the file in place so the next rescan retries it.
func (m *inboxMonitor) process(ctx context.Context, path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		m.logger.Warn("request file unreadable; will retry",
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "inbox_read_failed"))
		return
	}

	result, err := api.SubmitContract(ctx, api.SubmitContractRequest{
		Config:   m.cfg,
		Store:    m.store,
		Notifier: m.notifier,
		Logger:   m.logger,
		Payload:  payload,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			m.reject(ctx, path, err)
			return
		}
		m.logger.Error("request file could not be enqueued; will retry",
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "inbox_enqueue_failed"),
			logging.String(logging.FieldErrorHint, "check queue database health"))
		return
	}

	item := result.Item
	archived := m.archive(path, m.cfg.InboxProcessedDir())
	m.logger.Info("request file queued",
		logging.String("file", filepath.Base(path)),
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldContractRef, item.Reference),
		logging.String("archived_to", archived),
		logging.String(logging.FieldEventType, "inbox_file_queued"))
}

// reject archives an invalid request file and notifies the operator. Leaving
// it in the inbox would reject it again on every rescan.
func (m *inboxMonitor) reject(ctx context.Context, path string, cause error) {
	archived := m.archive(path, m.cfg.InboxRejectedDir())
	m.logger.Warn("request file rejected",
		logging.String("file", filepath.Base(path)),
		logging.Error(cause),
		logging.String("archived_to", archived),
		logging.String(logging.FieldEventType, "inbox_file_rejected"),
		logging.String(logging.FieldErrorHint, "fix the request payload and drop it into the inbox again"))
	if m.notifier != nil {
		if err := m.notifier.NotifyError(ctx, cause, filepath.Base(path)); err != nil {
			m.logger.Debug("rejection notification failed", logging.Error(err))
		}
	}
}

// archive moves a handled file out of the inbox. When the move fails the file
// is deleted instead: a submitted request left in the inbox would be
// submitted again on the next rescan.
func (m *inboxMonitor) archive(path, destDir string) string {
	base := filepath.Base(path)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		m.removeFallback(path, err)
		return ""
	}
	dest := filepath.Join(destDir, base)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		dest = filepath.Join(destDir, stem+"-"+strconv.FormatInt(time.Now().UnixNano(), 10)+ext)
	}
	if err := os.Rename(path, dest); err != nil {
		m.removeFallback(path, err)
		return ""
	}
	return dest
}

func (m *inboxMonitor) removeFallback(path string, cause error) {
	m.logger.Warn("failed to archive request file; deleting instead",
		logging.String("file", path),
		logging.Error(cause),
		logging.String(logging.FieldEventType, "inbox_archive_failed"),
		logging.String(logging.FieldImpact, "the original request file is not retained"))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Error("failed to remove request file after archive failure",
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "inbox_cleanup_failed"),
			logging.String(logging.FieldImpact, "the request may be enqueued again on the next rescan"))
	}
}
