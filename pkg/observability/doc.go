/*
Package observability provides tools for monitoring the Cadence runtime.

It turns lifecycle events and hook failures into Prometheus metrics and structured
logs, through the domain.LifecycleHooks observer and the ports.FailureReporter side
channel accepted by every state.
*/
package observability
