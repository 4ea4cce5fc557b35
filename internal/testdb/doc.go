// Package testdb locates and isolates the PostgreSQL database used by
// integration tests.
//
// Tests call PostgresURL to find the database. Outside CI a missing URL skips
// the test; in CI it fails it, so a misconfigured pipeline cannot pass by
// silently skipping every integration test. RollbackTx gives each test its own
// transaction that is rolled back on cleanup, so tests can share one database.
package testdb
