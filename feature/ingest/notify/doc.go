// Package notify tells the outside world about ingestion changes. Every
// publisher here is best effort: a failure is logged and never fails the
// ingestion that triggered it.
package notify
