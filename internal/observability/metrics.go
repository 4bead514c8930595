package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpDurationHistogram   *prometheus.HistogramVec
	ledgerOperationCounter  *prometheus.CounterVec
	loanTransitionCounter   *prometheus.CounterVec
	idempotencyCounter      *prometheus.CounterVec
	reconciliationViolation *prometheus.CounterVec
	pendingLoansGauge       prometheus.Gauge
	workerRunCounter        *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		ledgerOperationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by outcome (success or error kind)",
		}, []string{"operation", "outcome"})

		loanTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_transitions_total",
			Help: "Loan state transitions",
		}, []string{"to"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes by operation",
		}, []string{"operation", "outcome"})

		reconciliationViolation = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_reconciliation_violations_total",
			Help: "Ledger invariant violations found by reconciliation",
		}, []string{"rule"})

		pendingLoansGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loans_pending_approval",
			Help: "Loans waiting for approval at the last reconciliation",
		})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			ledgerOperationCounter,
			loanTransitionCounter,
			idempotencyCounter,
			reconciliationViolation,
			pendingLoansGauge,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementLedgerOperation(operation, outcome string) {
	if ledgerOperationCounter == nil {
		return
	}
	ledgerOperationCounter.WithLabelValues(operation, outcome).Inc()
}

func IncrementLoanTransition(to string) {
	if loanTransitionCounter == nil {
		return
	}
	loanTransitionCounter.WithLabelValues(to).Inc()
}

func IncrementIdempotencyEvent(operation, outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(operation, outcome).Inc()
}

func IncrementReconciliationViolation(rule string) {
	if reconciliationViolation == nil {
		return
	}
	reconciliationViolation.WithLabelValues(rule).Inc()
}

func SetPendingLoans(n int) {
	if pendingLoansGauge == nil {
		return
	}
	pendingLoansGauge.Set(float64(n))
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
