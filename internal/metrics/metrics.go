// Package metrics exports interview and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelanni/mockinterview/internal/session"
)

const namespace = "mockinterview"

// Metrics observes session events. A nil *Metrics is a no-op.
type Metrics struct {
	reg *prometheus.Registry

	InterviewsStarted   prometheus.Counter
	InterviewsCompleted prometheus.Counter
	InterviewsResumed   prometheus.Counter
	AnswersScored       *prometheus.CounterVec
	AnswerScore         *prometheus.HistogramVec
	FinalScore          prometheus.Histogram
	UploadsRejected     *prometheus.CounterVec
	PersistErrors       prometheus.Counter
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

var scoreBuckets = prometheus.LinearBuckets(10, 10, 10)

// New registers the collectors on a fresh registry. Go runtime and process
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		InterviewsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_started_total",
			Help:      "Interviews that reached the question loop.",
		}),
		InterviewsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_completed_total",
			Help:      "Interviews finalized with a score.",
		}),
		InterviewsResumed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_resumed_total",
			Help:      "Interviews resumed from a saved snapshot.",
		}),
		AnswersScored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_scored_total",
			Help:      "Scored answers by difficulty and timeout.",
		}, []string{"difficulty", "timeout"}),
		AnswerScore: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_score",
			Help:      "Per-answer heuristic score.",
			Buckets:   scoreBuckets,
		}, []string{"difficulty"}),
		FinalScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Final interview score.",
			Buckets:   scoreBuckets,
		}),
		UploadsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_rejected_total",
			Help:      "Rejected resume uploads by reason.",
		}, []string{"reason"}),
		PersistErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Failed writes to the state store.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Notify implements session.Observer.
func (m *Metrics) Notify(ev session.Event) {
	if m == nil {
		return
	}
	switch ev.Kind {
	case session.EventInterviewStarted:
		m.InterviewsStarted.Inc()
	case session.EventResumed:
		m.InterviewsResumed.Inc()
	case session.EventAnswerScored:
		if ev.Question == nil || ev.Answer == nil {
			return
		}
		d := string(ev.Question.Difficulty)
		m.AnswersScored.WithLabelValues(d, strconv.FormatBool(ev.Answer.IsTimeout)).Inc()
		m.AnswerScore.WithLabelValues(d).Observe(float64(ev.Answer.Score))
	case session.EventInterviewCompleted:
		m.InterviewsCompleted.Inc()
		if ev.Completed != nil {
			m.FinalScore.Observe(float64(ev.Completed.Interview.FinalScore))
		}
	case session.EventUploadRejected:
		reason, _ := ev.Data["Code"].(string)
		m.UploadsRejected.WithLabelValues(reason).Inc()
	case session.EventError:
		if ev.MessageID == session.MsgErrSaveFailed {
			m.PersistErrors.Inc()
		}
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
