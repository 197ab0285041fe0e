// Package recur implements the recurrence engine: pure date arithmetic that
// computes the next occurrence of a repeating task and materializes concrete
// instance tasks up to a horizon date, bounded by a safety cap. The engine
// performs no I/O; persisting generated instances and the updated template
// is the service layer's responsibility.
package recur
