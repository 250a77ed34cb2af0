// Package watcher polls Twitch for tracked streamers and announces each
// Offline→Live transition exactly once.
package watcher

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
	"github.com/darkSectorHT83/Darky-Bot/internal/telemetry"
	"github.com/darkSectorHT83/Darky-Bot/internal/twitch"
)

// LiveChecker answers whether a streamer is currently live. A nil Stream
// with nil error means offline.
type LiveChecker interface {
	CheckLive(ctx context.Context, login string) (*twitch.Stream, error)
}

// Notifier delivers a went-live announcement.
type Notifier interface {
	Notify(channelID, streamer string, s *twitch.Stream) error
}

// LoadFunc reads the current tracked-streamer table from its backing store.
type LoadFunc func() ([]storage.Streamer, error)

// Watcher drives the presence polling loop. Each tracked streamer carries a
// latch; a notification fires only when a live poll finds the latch off.
type Watcher struct {
	checker        LiveChecker
	notifier       Notifier
	load           LoadFunc
	pollInterval   time.Duration
	reloadInterval time.Duration

	entries []storage.Streamer
	// live latches keyed by channel ID + streamer name, so the same
	// streamer tracked in two channels notifies both
	latches map[string]bool

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Watcher. The table is loaded lazily on the first cycle.
func New(checker LiveChecker, notifier Notifier, load LoadFunc, pollInterval, reloadInterval time.Duration) *Watcher {
	return &Watcher{
		checker:        checker,
		notifier:       notifier,
		load:           load,
		pollInterval:   pollInterval,
		reloadInterval: reloadInterval,
		latches:        map[string]bool{},
		stopChan:       make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	slog.Info("Starting presence watcher", "pollInterval", w.pollInterval, "reloadInterval", w.reloadInterval)

	w.wg.Add(1)
	defer w.wg.Done()

	pollTicker := time.NewTicker(w.pollInterval)
	defer pollTicker.Stop()
	reloadTicker := time.NewTicker(w.reloadInterval)
	defer reloadTicker.Stop()

	w.Reload()
	w.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Presence watcher stopped (context cancelled)")
			return
		case <-w.stopChan:
			slog.Info("Presence watcher stopped")
			return
		case <-reloadTicker.C:
			w.Reload()
		case <-pollTicker.C:
			w.Poll(ctx)
		}
	}
}

// Stop signals the watcher to stop and waits for the in-flight cycle.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}

// Reload re-reads the tracked table. Latches of entries that remain
// tracked are preserved so an already-live stream is not re-announced;
// entries that disappeared drop their latch and new entries start offline.
func (w *Watcher) Reload() {
	entries, err := w.load()
	if err != nil {
		slog.Error("Failed to reload tracked streamers", "error", err)
		return
	}

	kept := make(map[string]bool, len(entries))
	for _, e := range entries {
		key := latchKey(e)
		kept[key] = w.latches[key]
	}
	w.entries = entries
	w.latches = kept

	telemetry.SetTrackedStreamers(len(entries))
	slog.Debug("Reloaded tracked streamers", "count", len(entries))
}

// Poll runs one cycle over the tracked table.
func (w *Watcher) Poll(ctx context.Context) {
	telemetry.AddCounter(telemetry.PollCycles)

	for _, entry := range w.entries {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
			w.checkStreamer(ctx, entry)
		}
	}
}

// checkStreamer probes one streamer and fires on the rising edge.
func (w *Watcher) checkStreamer(ctx context.Context, entry storage.Streamer) {
	stream, err := w.checker.CheckLive(ctx, entry.Name)
	if err != nil {
		// No new information this cycle; the latch stays as it was.
		telemetry.AddCounter(telemetry.TwitchErrors)
		slog.Warn("Liveness query failed", "streamer", entry.Name, "error", err)
		return
	}

	key := latchKey(entry)
	wasLive := w.latches[key]

	switch {
	case stream != nil && !wasLive:
		w.latches[key] = true
		slog.Info("Streamer went live", "streamer", entry.Name, "channelID", entry.ChannelID)
		if err := w.notifier.Notify(entry.ChannelID, entry.Name, stream); err == nil {
			telemetry.AddCounter(telemetry.LiveNotifications)
		}
	case stream == nil && wasLive:
		w.latches[key] = false
		slog.Debug("Streamer went offline", "streamer", entry.Name)
	}
}

func latchKey(e storage.Streamer) string {
	return e.ChannelID + "/" + strings.ToLower(e.Name)
}
