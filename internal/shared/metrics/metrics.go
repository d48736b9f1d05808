package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ingestionStartedTotal   atomic.Uint64
	ingestionCompletedTotal atomic.Uint64
	ingestionFailedTotal    atomic.Uint64

	enhancementStartedTotal   atomic.Uint64
	enhancementCompletedTotal atomic.Uint64
	enhancementFailedTotal    atomic.Uint64
	enhancementNoContextTotal atomic.Uint64

	ingestionJobsReceivedTotal  atomic.Uint64
	ingestionJobsCompletedTotal atomic.Uint64
	ingestionJobsFailedTotal    atomic.Uint64
	ingestionJobsDroppedTotal   atomic.Uint64

	ingestionDuration   = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	enhancementDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncIngestionStarted increments the ingestion started counter.
func IncIngestionStarted() {
	ingestionStartedTotal.Add(1)
}

// IncIngestionCompleted increments the ingestion completed counter.
func IncIngestionCompleted() {
	ingestionCompletedTotal.Add(1)
}

// IncIngestionFailed increments the ingestion failed counter.
func IncIngestionFailed() {
	ingestionFailedTotal.Add(1)
}

// ObserveIngestionDurationMs records an ingestion duration in milliseconds.
func ObserveIngestionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	ingestionDuration.Observe(value)
}

// IncEnhancementStarted increments the enhancement started counter.
func IncEnhancementStarted() {
	enhancementStartedTotal.Add(1)
}

// IncEnhancementCompleted increments the enhancement completed counter.
func IncEnhancementCompleted() {
	enhancementCompletedTotal.Add(1)
}

// IncEnhancementFailed increments the enhancement failed counter.
func IncEnhancementFailed() {
	enhancementFailedTotal.Add(1)
}

// IncEnhancementNoContext counts enhancements that short-circuited because no
// document cleared the similarity threshold.
func IncEnhancementNoContext() {
	enhancementNoContextTotal.Add(1)
}

// ObserveEnhancementDurationMs records an enhancement duration in milliseconds.
func ObserveEnhancementDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	enhancementDuration.Observe(value)
}

// IncIngestionJobsReceived increments the worker jobs received counter.
func IncIngestionJobsReceived() {
	ingestionJobsReceivedTotal.Add(1)
}

// IncIngestionJobsCompleted increments the worker jobs completed counter.
func IncIngestionJobsCompleted() {
	ingestionJobsCompletedTotal.Add(1)
}

// IncIngestionJobsFailed increments the worker jobs failed counter.
func IncIngestionJobsFailed() {
	ingestionJobsFailedTotal.Add(1)
}

// IncIngestionJobsDeletedUnrecoverable counts queue messages dropped as
// unrecoverable (bad payloads, missing ids).
func IncIngestionJobsDeletedUnrecoverable() {
	ingestionJobsDroppedTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ingestion_started_total", "Total document ingestions started", ingestionStartedTotal.Load())
	writeCounter(&buf, "ingestion_completed_total", "Total document ingestions completed", ingestionCompletedTotal.Load())
	writeCounter(&buf, "ingestion_failed_total", "Total document ingestions failed", ingestionFailedTotal.Load())
	writeCounter(&buf, "enhancement_started_total", "Total suggestion enhancements started", enhancementStartedTotal.Load())
	writeCounter(&buf, "enhancement_completed_total", "Total suggestion enhancements completed", enhancementCompletedTotal.Load())
	writeCounter(&buf, "enhancement_failed_total", "Total suggestion enhancements failed", enhancementFailedTotal.Load())
	writeCounter(&buf, "enhancement_no_context_total", "Total enhancements skipped with no qualifying context", enhancementNoContextTotal.Load())
	writeCounter(&buf, "ingestion_jobs_received_total", "Total ingestion queue jobs received", ingestionJobsReceivedTotal.Load())
	writeCounter(&buf, "ingestion_jobs_completed_total", "Total ingestion queue jobs completed", ingestionJobsCompletedTotal.Load())
	writeCounter(&buf, "ingestion_jobs_failed_total", "Total ingestion queue jobs failed", ingestionJobsFailedTotal.Load())
	writeCounter(&buf, "ingestion_jobs_deleted_unrecoverable_total", "Total ingestion queue jobs dropped as unrecoverable", ingestionJobsDroppedTotal.Load())
	writeHistogram(&buf, "ingestion_duration_ms", "Document ingestion duration in milliseconds", ingestionDuration.Snapshot())
	writeHistogram(&buf, "enhancement_duration_ms", "Suggestion enhancement duration in milliseconds", enhancementDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
