// Package sync keeps the schedule store durable: synchronously in a local
// snapshot, asynchronously in a remote per-user document with debounced,
// coalesced writes. On session start it reconciles the two snapshots,
// preferring the remote one wholesale when they differ.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/basaknazik/itudam/internal/schedule"
)

// DefaultDebounce is the window a mutation waits for further edits before
// the remote write goes out.
const DefaultDebounce = 3 * time.Second

// Manager owns persistence for one user session. It holds no independent
// schedule copy, only snapshots it has flushed.
type Manager struct {
	store    *schedule.Store
	local    LocalStore
	remote   RemoteStore
	logger   *zap.Logger
	debounce time.Duration

	mu       stdsync.Mutex
	ctx      context.Context
	userID   string
	state    State
	timer    *time.Timer
	statusFn []func(Status)
}

// New wires a manager to the store: every store mutation will trigger a
// local write plus a debounced remote write. debounce <= 0 selects
// DefaultDebounce. A nil remote runs the session local-only.
func New(store *schedule.Store, local LocalStore, remote RemoteStore, logger *zap.Logger, debounce time.Duration) *Manager {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:    store,
		local:    local,
		remote:   remote,
		logger:   logger,
		debounce: debounce,
		ctx:      context.Background(),
		state:    StateUnauthenticated,
	}
	store.OnPersist(m.TriggerSave)
	return m
}

// OnStatus registers a status consumer. Signals are advisory; they never
// block or roll back anything.
func (m *Manager) OnStatus(fn func(Status)) {
	m.mu.Lock()
	m.statusFn = append(m.statusFn, fn)
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Begin starts the session for a user identity. The local snapshot is
// applied immediately and the manager is Ready before the remote
// round-trip; reconciliation against the remote document continues in the
// background. ctx bounds all remote traffic for the session.
func (m *Manager) Begin(ctx context.Context, userID string) {
	m.mu.Lock()
	m.ctx = ctx
	m.userID = userID
	m.state = StateLoading
	m.mu.Unlock()

	snap, ok, err := m.local.Read(userID)
	if err != nil {
		// Corrupt snapshot: start empty rather than fail the session.
		m.logger.Warn("local snapshot unreadable, starting empty", zap.Error(err))
	}
	if ok {
		m.store.Replace(snap)
		m.logger.Info("schedule loaded from local snapshot",
			zap.String("user", userID), zap.Int("courses", len(snap)))
	}

	m.mu.Lock()
	m.state = StateReady
	m.mu.Unlock()

	m.emit(StatusSyncing)
	go m.reconcile(ctx, userID)
}

// reconcile fetches the remote document and, when it differs structurally
// from the active schedule, replaces the schedule wholesale and rewrites
// the local snapshot to match. Remote wins; offline edits made since the
// last remote write are discarded.
func (m *Manager) reconcile(ctx context.Context, userID string) {
	if m.remote == nil {
		m.emit(StatusReady)
		return
	}

	doc, ok, err := m.remote.Read(ctx, userID)
	if err != nil {
		m.logger.Warn("remote read failed, staying local-only",
			zap.String("user", userID), zap.Error(err))
		m.emit(StatusOffline)
		return
	}

	if ok {
		remote := doc.Program
		if remote == nil {
			remote = schedule.Snapshot{}
		}
		if !snapshotsEqual(remote, m.store.Snapshot()) {
			m.store.Replace(remote)
			if err := m.local.Write(userID, m.store.Snapshot()); err != nil {
				m.logger.Warn("local overwrite after reconciliation failed", zap.Error(err))
			}
			m.logger.Info("schedule replaced by remote snapshot",
				zap.String("user", userID),
				zap.Int("courses", len(remote)),
				zap.Time("remoteUpdated", doc.Updated))
		}
	}
	m.emit(StatusReady)
}

// TriggerSave runs after every store mutation. The local write happens
// right here, unconditionally, so closing the session straight after a
// mutation loses nothing. The remote write is debounced: each call cancels
// the previous pending timer, so the remote only ever sees the latest
// state, never an intermediate one.
func (m *Manager) TriggerSave() {
	m.mu.Lock()
	userID := m.userID
	m.mu.Unlock()
	if userID == "" {
		return
	}

	if err := m.local.Write(userID, m.store.Snapshot()); err != nil {
		m.logger.Warn("local write failed", zap.String("user", userID), zap.Error(err))
	}
	m.emit(StatusSavePending)

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.flushRemote)
	m.mu.Unlock()
}

// Flush fires any pending remote write immediately. Used on shutdown.
func (m *Manager) Flush() {
	m.mu.Lock()
	t := m.timer
	m.timer = nil
	m.mu.Unlock()

	if t != nil && t.Stop() {
		m.flushRemote()
	}
}

// flushRemote captures the schedule as it is now (not as it was when the
// timer armed) and issues one remote write. An in-flight write is never
// cancelled; its outcome is advisory only.
func (m *Manager) flushRemote() {
	m.mu.Lock()
	ctx := m.ctx
	userID := m.userID
	m.timer = nil
	m.mu.Unlock()
	if userID == "" || m.remote == nil {
		return
	}

	m.emit(StatusWriting)
	doc := &Document{Program: m.store.Snapshot(), Updated: time.Now().UTC()}
	if err := m.remote.Write(ctx, userID, doc); err != nil {
		// No rollback, no retry: the next mutation's debounce cycle retries
		// naturally.
		m.logger.Warn("remote write failed", zap.String("user", userID), zap.Error(err))
		m.emit(StatusSaveFailed)
		return
	}
	m.logger.Debug("remote write ok", zap.String("user", userID), zap.Int("courses", len(doc.Program)))
	m.emit(StatusSaved)
}

func (m *Manager) emit(s Status) {
	m.mu.Lock()
	fns := make([]func(Status), len(m.statusFn))
	copy(fns, m.statusFn)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// snapshotsEqual compares snapshots by canonical JSON. Map keys marshal in
// sorted order, so equal content always encodes identically.
func snapshotsEqual(a, b schedule.Snapshot) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
