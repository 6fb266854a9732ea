package api

import (
	"math"
	"time"

	"github.com/five82/daily/internal/schedule"
)

// StatusLogLines is how many log lines the status surface returns.
const StatusLogLines = 200

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	AppliedURL   string             `json:"applied_url"`
	ConfigLoaded bool               `json:"config_loaded"`
	Config       *schedule.Document `json:"config"`
	Override     *schedule.Override `json:"override,omitempty"`
	Logs         []string           `json:"logs"`
}

// OverrideRequest is the body of POST /api/temp_wallpaper. Hours defaults to
// one when omitted.
type OverrideRequest struct {
	URL   string `json:"url"`
	Hours *int   `json:"hours,omitempty"`
}

// OverrideResponse is the reply to an override request.
type OverrideResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MaxOverrideHours is the longest override whose duration fits in a
// time.Duration.
const MaxOverrideHours = math.MaxInt64 / int64(time.Hour)

// ExpiryFor returns the expiry of an override requested at now. hours must not
// exceed MaxOverrideHours.
func ExpiryFor(now time.Time, hours int) time.Time {
	return now.Add(time.Duration(hours) * time.Hour)
}
