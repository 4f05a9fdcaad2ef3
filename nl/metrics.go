package nl

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics adapted from the teacher's metrics/metrics.go: the same
// syscall-latency histogram shape, now keyed by syscall name instead of
// address family, plus a dispatch-record counter keyed by the event the
// record was classified into and an error counter keyed by error kind.
var (
	// SyscallLatency tracks wall-clock time spent inside a single
	// send/receive syscall (sendto, sendmsg, recvmsg), not including
	// message parsing or hook dispatch.
	SyscallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nlcore_syscall_latency_seconds",
			Help: "netlink syscall latency distribution, by syscall name",
			Buckets: []float64{
				0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05,
				0.1, 0.25, 0.5, 1,
			},
		},
		[]string{"syscall"},
	)

	// DispatchRecords counts netlink records the dispatch loop has
	// classified, by the event they were routed to.
	DispatchRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlcore_dispatch_records_total",
			Help: "netlink records processed by the dispatch loop, by event",
		},
		[]string{"event"},
	)

	// ErrorCount counts errors from the send/receive syscalls wrapped by
	// observeSyscall, by kind; errors raised by the dispatch loop itself
	// are not counted.
	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlcore_errors_total",
			Help: "errors returned by the transport engine, by kind",
		},
		[]string{"kind"},
	)
)

// observeSyscall runs fn, recording its latency under op regardless of
// outcome and bumping ErrorCount if it failed.
func observeSyscall(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	SyscallLatency.With(prometheus.Labels{"syscall": op}).Observe(time.Since(start).Seconds())
	if err != nil {
		if kind, ok := KindOf(err); ok {
			ErrorCount.With(prometheus.Labels{"kind": kind.String()}).Inc()
		}
	}
	return err
}

// recordDispatch bumps DispatchRecords for the given event.
func recordDispatch(e Event) {
	DispatchRecords.With(prometheus.Labels{"event": eventName(e)}).Inc()
}
