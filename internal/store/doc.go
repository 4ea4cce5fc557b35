// Package store declares the persistence contract of the review scheduler
// and the error values every implementation reports. Saves are
// compare-and-swap on the record revision.
//
// The SQL implementations live in internal/platform/sqlstore.
package store
