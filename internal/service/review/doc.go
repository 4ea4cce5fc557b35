// Package review orchestrates review submissions: it resolves the user's
// record for an item, applies the box scheduler and persists the result with
// optimistic concurrency, retrying against fresh state when another writer
// got there first.
package review
