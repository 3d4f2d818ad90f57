// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces, using database/sql over the pgx stdlib driver.
package postgres
