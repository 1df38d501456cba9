package models

import (
	"time"
)

type EventType string

const (
	EventTypePageView     EventType = "page_view"
	EventTypeSessionStart EventType = "session_start"
	EventTypeClick        EventType = "click"
	EventTypeDownload     EventType = "download"
	EventTypeSearch       EventType = "search"
	EventTypeFormSubmit   EventType = "form_submit"
)

// AnalyticsRetention is how long events stay queryable before the TTL
// index removes them.
const AnalyticsRetention = 365 * 24 * time.Hour

type Visitor struct {
	ID        string `bson:"id,omitempty" json:"id,omitempty"`
	IPAddress string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
}

type GeoLocation struct {
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	Region  string `bson:"region,omitempty" json:"region,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
}

type Device struct {
	Type    string `bson:"type,omitempty" json:"type,omitempty"`
	Browser string `bson:"browser,omitempty" json:"browser,omitempty"`
	OS      string `bson:"os,omitempty" json:"os,omitempty"`
}

type Referrer struct {
	URL    string `bson:"url,omitempty" json:"url,omitempty"`
	Domain string `bson:"domain,omitempty" json:"domain,omitempty"`
	Medium string `bson:"medium,omitempty" json:"medium,omitempty"`
}

type EventMetrics struct {
	LoadTimeMS    int64   `bson:"load_time_ms,omitempty" json:"load_time_ms,omitempty"`
	TimeOnPageSec float64 `bson:"time_on_page_sec,omitempty" json:"time_on_page_sec,omitempty"`
	ScrollDepth   float64 `bson:"scroll_depth,omitempty" json:"scroll_depth,omitempty"`
}

// AnalyticsEvent is append-only; nothing updates an event after insert.
type AnalyticsEvent struct {
	Meta      `bson:",inline"`
	EventType EventType    `bson:"event_type" json:"event_type"`
	Path      string       `bson:"path,omitempty" json:"path,omitempty"`
	ContentID string       `bson:"content_id,omitempty" json:"content_id,omitempty"`
	Visitor   Visitor      `bson:"visitor,omitempty" json:"visitor,omitempty"`
	Location  GeoLocation  `bson:"location,omitempty" json:"location,omitempty"`
	Device    Device       `bson:"device,omitempty" json:"device,omitempty"`
	Referrer  Referrer     `bson:"referrer,omitempty" json:"referrer,omitempty"`
	Metrics   EventMetrics `bson:"metrics,omitempty" json:"metrics,omitempty"`
	Timestamp time.Time    `bson:"timestamp" json:"timestamp"`
}

func (e AnalyticsEvent) Validate() error {
	if e.EventType == "" {
		return errRequired("event_type")
	}
	return nil
}
