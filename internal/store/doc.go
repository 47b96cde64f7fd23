// Package store defines interfaces for card persistence.
// These interfaces abstract the underlying data storage mechanism from
// the review engine and the reminder sweep, allowing business rules to remain
// independent of specific database technologies or persistence details.
// Implementations live under internal/platform (memory, sqlstore).
package store
