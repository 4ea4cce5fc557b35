// Package domain contains the core entities, value objects and domain rules of
// the review scheduler. It is independent of any storage or transport concern:
// learnable item references, per-user review records and review outcomes live
// here, while the scheduling policy itself lives in the srs subpackage.
package domain
