/*
Package observability exposes Prometheus metrics for the component tree.

Metrics.Hooks returns domain.LifecycleHooks that count committed mutations and
absorbed diagnostics; Metrics.StoreMiddleware times document store calls.
*/
package observability
