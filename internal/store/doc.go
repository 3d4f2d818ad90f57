// Package store defines the persistence interfaces for the progress tracker
// along with the shared error taxonomy and transaction helpers. Concrete
// implementations live under internal/platform.
package store
