package cota

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/m3rciful/cotabot/core/logger"
)

// Registry owns every chat session and its persistence lifecycle. Sessions
// are created lazily on first access; every mutation persists the whole
// registry as one snapshot.
//
// Concurrency: each chat has its own lock, so different chats proceed in
// parallel while events for one chat are strictly serialized.
type Registry struct {
	store Store

	mu    sync.Mutex
	tr    Transport
	chats map[int64]*chatEntry

	// snaps caches the latest serialized form of each chat so a save only
	// re-marshals the chat that changed. snapMu is held across the whole
	// write so saves reach the store in cache order and a finished save is
	// never overwritten by an older snapshot.
	snapMu sync.Mutex
	snaps  map[int64]json.RawMessage
}

type chatEntry struct {
	mu      sync.Mutex
	session *ChatSession
}

// NewRegistry creates a registry backed by the given snapshot store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store: store,
		chats: make(map[int64]*chatEntry),
		snaps: make(map[int64]json.RawMessage),
	}
}

// AttachTransport wires the chat backend. Must be called before any
// session operation; loaded sessions pick it up on first access.
func (r *Registry) AttachTransport(tr Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tr = tr
}

// Load replaces the registry contents with the stored snapshot. A missing
// or corrupt snapshot leaves the registry empty; neither is fatal.
func (r *Registry) Load(ctx context.Context) error {
	data, err := r.store.Load(ctx)
	if err != nil {
		logger.STORE.LogAttrs(ctx, slog.LevelWarn, "snapshot.load_failed",
			slog.String("err", err.Error()),
		)
		return nil
	}
	if len(data) == 0 {
		logger.STORE.LogAttrs(ctx, slog.LevelInfo, "snapshot.empty")
		return nil
	}

	var sessions map[int64]*ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		logger.STORE.LogAttrs(ctx, slog.LevelWarn, "snapshot.corrupt",
			slog.Int("bytes", len(data)),
			slog.String("err", err.Error()),
		)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapMu.Lock()
	defer r.snapMu.Unlock()
	r.chats = make(map[int64]*chatEntry, len(sessions))
	r.snaps = make(map[int64]json.RawMessage, len(sessions))
	for chatID, session := range sessions {
		session.attach(r.tr)
		r.chats[chatID] = &chatEntry{session: session}
		if raw, err := json.Marshal(session); err == nil {
			r.snaps[chatID] = raw
		}
	}
	logger.STORE.LogAttrs(ctx, slog.LevelInfo, "snapshot.loaded",
		slog.Int("chats", len(sessions)),
		slog.Int("bytes", len(data)),
	)
	return nil
}

func (r *Registry) entry(chatID int64) *chatEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.chats[chatID]
	if !ok {
		e = &chatEntry{session: NewChatSession(chatID)}
		r.chats[chatID] = e
	}
	e.session.attach(r.tr)
	return e
}

// WithChat runs fn against the chat's session under that chat's lock, then
// persists the registry. Persistence failures are logged, not returned:
// the in-memory mutation already happened and the next save retries.
func (r *Registry) WithChat(ctx context.Context, chatID int64, fn func(s *ChatSession) error) error {
	e := r.entry(chatID)

	e.mu.Lock()
	err := fn(e.session)
	raw, marshalErr := json.Marshal(e.session)
	e.mu.Unlock()

	if marshalErr != nil {
		logger.STORE.LogAttrs(ctx, slog.LevelError, "snapshot.marshal_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", marshalErr.Error()),
		)
		return err
	}
	r.persist(ctx, chatID, raw)
	return err
}

func (r *Registry) persist(ctx context.Context, chatID int64, raw json.RawMessage) {
	r.snapMu.Lock()
	defer r.snapMu.Unlock()
	r.snaps[chatID] = raw
	data, err := json.Marshal(r.snaps)
	if err != nil {
		logger.STORE.LogAttrs(ctx, slog.LevelError, "snapshot.marshal_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	if err := r.store.Save(ctx, data); err != nil {
		logger.STORE.LogAttrs(ctx, slog.LevelError, "snapshot.save_failed",
			slog.Int("bytes", len(data)),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.STORE.LogAttrs(ctx, slog.LevelDebug, "snapshot.saved",
		slog.Int64("chat_id", chatID),
		slog.Int("bytes", len(data)),
	)
}

// ChatStats is a read-only per-chat summary for diagnostics.
type ChatStats struct {
	ChatID  int64
	Active  int
	History int
	Views   int
}

// Stats snapshots per-chat counters, ordered by chat id.
func (r *Registry) Stats() []ChatStats {
	r.mu.Lock()
	entries := make(map[int64]*chatEntry, len(r.chats))
	for id, e := range r.chats {
		entries[id] = e
	}
	r.mu.Unlock()

	stats := make([]ChatStats, 0, len(entries))
	for id, e := range entries {
		e.mu.Lock()
		stats = append(stats, ChatStats{
			ChatID:  id,
			Active:  len(e.session.Active),
			History: len(e.session.History),
			Views:   len(e.session.Views),
		})
		e.mu.Unlock()
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ChatID < stats[j].ChatID })
	return stats
}
