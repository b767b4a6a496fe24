package ports

import "github.com/aretw0/cadence/pkg/domain"

// FailureReporter is the side channel through which the core surfaces hook failures.
// Implementations must not panic and should return quickly; they run on the
// goroutine that drove the failing transition.
type FailureReporter interface {
	ReportFailure(failure domain.HookFailure)
}

// ReporterFunc adapts a plain function to a FailureReporter.
type ReporterFunc func(failure domain.HookFailure)

// ReportFailure calls f(failure).
func (f ReporterFunc) ReportFailure(failure domain.HookFailure) {
	f(failure)
}

// MultiReporter fans a failure out to several reporters, in order.
type MultiReporter []FailureReporter

// ReportFailure forwards the failure to every non-nil reporter.
func (m MultiReporter) ReportFailure(failure domain.HookFailure) {
	for _, r := range m {
		if r != nil {
			r.ReportFailure(failure)
		}
	}
}
