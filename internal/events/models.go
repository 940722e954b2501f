package events

import "time"

// EventType represents the kind of tracked record.
type EventType int

const (
	EventTypePageView    EventType = 1
	EventTypeCustomEvent EventType = 2
	// EventTypeAny matches both kinds in store queries.
	EventTypeAny EventType = 0
)

// Defaults for missing dimension values.
const (
	DirectSource   = "Direct"
	UnknownCountry = "Unknown"
	UnknownBrowser = "Unknown"
	DeviceDesktop  = "desktop"
	DeviceMobile   = "mobile"
	DeviceTablet   = "tablet"
)

// Event is an immutable, append-only tracked record. Rows are written by
// the collector and only ever read by the aggregation engine. Dimension
// fields (country, browser, device) are enriched at collection time;
// ReferrerHostname holds the bare host of the referring URL, empty for
// direct traffic.
type Event struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	ProjectID        string    `gorm:"index:idx_project_timestamp;size:36;not null"`
	SessionID        string    `gorm:"index;size:64;not null"`
	EventType        EventType `gorm:"not null;default:1"`
	Hostname         string    `gorm:"not null"`
	Pathname         string    `gorm:"index;not null"`
	ReferrerHostname string    `gorm:"index"`
	Country          string    `gorm:"index"`
	Browser          string
	OperatingSystem  string
	Device           string
	CustomEventName  string    `gorm:"index"`
	CustomEventMeta  string    `gorm:"type:text"`
	Timestamp        time.Time `gorm:"index:idx_project_timestamp;not null"`
	CreatedAt        time.Time
}
