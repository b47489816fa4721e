// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	PortfolioRefreshed   EventType = "PORTFOLIO_REFRESHED"
	PositionsUpdated     EventType = "POSITIONS_UPDATED"
	OrdersUpdated        EventType = "ORDERS_UPDATED"
	PerformanceUpdated   EventType = "PERFORMANCE_UPDATED"
	BackendStatusChanged EventType = "BACKEND_STATUS_CHANGED"
	StrategiesUpdated    EventType = "STRATEGIES_UPDATED"
	ScreenerRunStarted   EventType = "SCREENER_RUN_STARTED"
	ScreenerRunCompleted EventType = "SCREENER_RUN_COMPLETED"
	SnapshotSaved        EventType = "SNAPSHOT_SAVED"
	ErrorOccurred        EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Handler receives published events
type Handler func(event *Event)
