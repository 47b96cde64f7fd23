// Package postgres provides the PostgreSQL flavor of the card store.
// It opens pgx-backed database/sql pools, describes the SQL dialect used by
// internal/platform/sqlstore, and maps PostgreSQL error codes onto the
// errors defined in internal/store.
package postgres
