package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type requestLabel struct {
	method string
	path   string
	status string
}

// Recorder aggregates in-memory counters for HTTP requests and the platform's
// engagement events: uploads, views, reactions, subscriptions, comments, and
// playlist edits. Writers coordinate through a RWMutex; the view counter is a
// plain atomic since it is the hottest path.
type Recorder struct {
	mu                 sync.RWMutex
	requestCount       map[requestLabel]uint64
	requestDuration    map[requestLabel]time.Duration
	videoEvents        map[string]uint64
	subscriptionEvents map[string]uint64
	reactionEvents     map[string]uint64
	commentEvents      map[string]uint64
	playlistEvents     map[string]uint64
	viewsTotal         atomic.Uint64
}

var defaultRecorder = New()

// New constructs an empty Recorder with initialized backing maps so callers
// can record metrics without additional setup.
func New() *Recorder {
	return &Recorder{
		requestCount:       make(map[requestLabel]uint64),
		requestDuration:    make(map[requestLabel]time.Duration),
		videoEvents:        make(map[string]uint64),
		subscriptionEvents: make(map[string]uint64),
		reactionEvents:     make(map[string]uint64),
		commentEvents:      make(map[string]uint64),
		playlistEvents:     make(map[string]uint64),
	}
}

// Default returns the singleton Recorder shared by packages that do not need
// a custom instrumentation pipeline.
func Default() *Recorder {
	return defaultRecorder
}

// ObserveRequest accumulates request count and cumulative duration by HTTP
// method, normalized path, and status code.
func (r *Recorder) ObserveRequest(method, path string, status int, duration time.Duration) {
	label := requestLabel{
		method: strings.ToUpper(method),
		path:   normalizePath(path),
		status: fmt.Sprintf("%d", status),
	}
	r.mu.Lock()
	r.requestCount[label]++
	r.requestDuration[label] += duration
	r.mu.Unlock()
}

// ObserveVideoEvent records a video lifecycle event ("upload", "delete",
// "update").
func (r *Recorder) ObserveVideoEvent(event string) {
	r.increment(r.videoEvents, event)
}

// ObserveSubscriptionEvent records "subscribe" or "unsubscribe".
func (r *Recorder) ObserveSubscriptionEvent(event string) {
	r.increment(r.subscriptionEvents, event)
}

// ObserveReactionEvent records "like" or "dislike".
func (r *Recorder) ObserveReactionEvent(event string) {
	r.increment(r.reactionEvents, event)
}

// ObserveCommentEvent records a comment lifecycle event.
func (r *Recorder) ObserveCommentEvent(event string) {
	r.increment(r.commentEvents, event)
}

// ObservePlaylistEvent records a playlist lifecycle event.
func (r *Recorder) ObservePlaylistEvent(event string) {
	r.increment(r.playlistEvents, event)
}

// ObserveView counts one playback view.
func (r *Recorder) ObserveView() {
	r.viewsTotal.Add(1)
}

// ViewsTotal exposes the view counter, for tests.
func (r *Recorder) ViewsTotal() uint64 {
	return r.viewsTotal.Load()
}

func (r *Recorder) increment(counters map[string]uint64, event string) {
	normalized := normalizeName(event)
	r.mu.Lock()
	counters[normalized]++
	r.mu.Unlock()
}

// Reset clears all counters. It is intended for test setups.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestCount = make(map[requestLabel]uint64)
	r.requestDuration = make(map[requestLabel]time.Duration)
	r.videoEvents = make(map[string]uint64)
	r.subscriptionEvents = make(map[string]uint64)
	r.reactionEvents = make(map[string]uint64)
	r.commentEvents = make(map[string]uint64)
	r.playlistEvents = make(map[string]uint64)
	r.viewsTotal.Store(0)
}

// Handler exposes the Recorder as an http.Handler that writes Prometheus text
// exposition data.
func (r *Recorder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.Write(w)
	})
}

// Write renders the metrics in Prometheus text format with label sets sorted
// for stable output.
func (r *Recorder) Write(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requestLabels := r.sortedRequestLabels()

	fmt.Fprintln(w, "# HELP ourtube_http_requests_total Total number of HTTP requests processed by the API")
	fmt.Fprintln(w, "# TYPE ourtube_http_requests_total counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "ourtube_http_requests_total{method=\"%s\",path=\"%s\",status=\"%s\"} %d\n", label.method, label.path, label.status, r.requestCount[label])
	}

	fmt.Fprintln(w, "# HELP ourtube_http_request_duration_seconds_sum Cumulative duration of HTTP requests in seconds")
	fmt.Fprintln(w, "# TYPE ourtube_http_request_duration_seconds_sum counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "ourtube_http_request_duration_seconds_sum{method=\"%s\",path=\"%s\",status=\"%s\"} %f\n", label.method, label.path, label.status, r.requestDuration[label].Seconds())
	}

	fmt.Fprintln(w, "# HELP ourtube_http_request_duration_seconds_count Total number of observations for request durations")
	fmt.Fprintln(w, "# TYPE ourtube_http_request_duration_seconds_count counter")
	for _, label := range requestLabels {
		fmt.Fprintf(w, "ourtube_http_request_duration_seconds_count{method=\"%s\",path=\"%s\",status=\"%s\"} %d\n", label.method, label.path, label.status, r.requestCount[label])
	}

	writeEventCounter(w, "ourtube_video_events_total", "Video lifecycle events by type", r.videoEvents)
	writeEventCounter(w, "ourtube_subscription_events_total", "Subscription graph changes by type", r.subscriptionEvents)
	writeEventCounter(w, "ourtube_reaction_events_total", "Video reactions by type", r.reactionEvents)
	writeEventCounter(w, "ourtube_comment_events_total", "Comment lifecycle events by type", r.commentEvents)
	writeEventCounter(w, "ourtube_playlist_events_total", "Playlist lifecycle events by type", r.playlistEvents)

	fmt.Fprintln(w, "# HELP ourtube_video_views_total Total playback views recorded")
	fmt.Fprintln(w, "# TYPE ourtube_video_views_total counter")
	fmt.Fprintf(w, "ourtube_video_views_total %d\n", r.viewsTotal.Load())
}

func writeEventCounter(w io.Writer, name, help string, counters map[string]uint64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	events := make([]string, 0, len(counters))
	for event := range counters {
		events = append(events, event)
	}
	sort.Strings(events)
	for _, event := range events {
		fmt.Fprintf(w, "%s{event=\"%s\"} %d\n", name, event, counters[event])
	}
}

func (r *Recorder) sortedRequestLabels() []requestLabel {
	labels := make([]requestLabel, 0, len(r.requestCount))
	for label := range r.requestCount {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].method != labels[j].method {
			return labels[i].method < labels[j].method
		}
		if labels[i].path != labels[j].path {
			return labels[i].path < labels[j].path
		}
		return labels[i].status < labels[j].status
	})
	return labels
}

// normalizePath collapses identifier segments so metrics cardinality stays
// bounded regardless of how many entities exist.
func normalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if looksLikeIdentifier(part) {
			parts[i] = ":id"
		}
	}
	normalized := strings.Join(parts, "/")
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasSuffix(normalized, "/") && len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

func looksLikeIdentifier(segment string) bool {
	if len(segment) >= 16 {
		return true
	}
	digitCount := 0
	for _, r := range segment {
		if r >= '0' && r <= '9' {
			digitCount++
		}
	}
	return digitCount >= 3
}

func normalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

// ObserveRequest records a request on the default recorder.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	defaultRecorder.ObserveRequest(method, path, status, duration)
}

// ObserveView counts a view on the default recorder.
func ObserveView() {
	defaultRecorder.ObserveView()
}

// Handler exposes the default recorder as an HTTP handler.
func Handler() http.Handler {
	return defaultRecorder.Handler()
}
