// Package sites manages the bounded set of candidate sites under comparison.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, Add/Remove and the observable counts.
//   - config.go: Config and package defaults; New applies defaults.
//   - site.go: the Site slot, its lifecycle state and outcome future.
//   - enrichment.go: the asynchronous enrichment continuation.
//   - display.go: info rows, grouped statistics and extents.
//   - container.go: the mount point sites are attached to.
//   - errors.go: error types and helpers (IsAtCapacity, IsSiteNotFound).
//   - events.go, eventpub_memory.go: lifecycle events and publishers.
//   - status_report.go: Status reporting.
//
// Counts are written to the manager's observable store while the manager lock
// is held and delivered after it is released, so watchers may call back into
// the Manager.
package sites
