// Package taskgen orchestrates recurring task instance generation: it walks
// recurring templates, materializes their upcoming instances through the
// recurrence engine, and persists instances together with the template's
// generation bookkeeping in a single transaction.
package taskgen
