// Package sanitizer normalizes free-text customer input before validation and
// storage.
//
// All functions are idempotent and never fail: invalid input comes back
// trimmed or empty and is left for the validator to reject.
package sanitizer
