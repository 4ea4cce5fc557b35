// Package sqlstore implements the store interfaces on top of database/sql
// through sqlx. It supports PostgreSQL (pgx driver) and SQLite (pure-Go
// modernc driver) from the same code: queries are written with "?"
// placeholders and rebound for the connection's driver.
package sqlstore
