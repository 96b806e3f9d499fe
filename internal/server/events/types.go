// Package events provides a unified event system for real-time catalog updates.
//
// The broker connects the service hooks (publish, cache invalidation, drafts
// cleared, orphan sweep) to every transport (WebSocket, SSE) through one
// pipeline, so a hook publishes once and each transport adapts the event.
package events

import "time"

// EventType represents the type of catalog event.
type EventType string

// Event types for catalog changes.
const (
	// MineralPublished fires after a record is committed to disk.
	MineralPublished EventType = "mineral.published"

	// CatalogInvalidated fires when cached catalogs are dropped.
	CatalogInvalidated EventType = "catalog.invalidated"

	// DraftsCleared fires when an admin logout discards pending drafts.
	DraftsCleared EventType = "drafts.cleared"

	// OrphansSwept fires after orphaned record folders are removed.
	OrphansSwept EventType = "orphans.swept"

	// ClientConnected fires when a realtime client attaches.
	ClientConnected EventType = "client.connected"
)

// Event represents a catalog event with type, timestamp, and data.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
