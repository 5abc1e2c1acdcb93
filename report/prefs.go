package report

import (
	"encoding/json"
	"fmt"
	"os"
)

// QuietHours is a daily do-not-disturb interval, in minutes past midnight.
type QuietHours struct {
	StartMinutes int    `json:"startMinutes"`
	EndMinutes   int    `json:"endMinutes"`
	Timezone     string `json:"timezoneIdentifier"`
}

// TimezoneName returns the configured timezone identifier, or "local".
func (q *QuietHours) TimezoneName() string {
	if q.Timezone == "" {
		return "local"
	}
	return q.Timezone
}

// Preferences mirrors the notification-preferences document maintained by
// the sampler UI. The boolean toggles use pointers so that an absent key
// keeps its documented default (enabled) instead of collapsing to false.
type Preferences struct {
	QuietHours                         *QuietHours `json:"quietHours"`
	AllowInterruptionsDuringQuietHours bool        `json:"allowInterruptionsDuringQuietHours"`
	LeakNotificationsEnabled           *bool       `json:"leakNotificationsEnabled"`
	PressureNotificationsEnabled       *bool       `json:"pressureNotificationsEnabled"`
}

// LeakAlertsEnabled defaults to true when the key is absent.
func (p *Preferences) LeakAlertsEnabled() bool {
	return p.LeakNotificationsEnabled == nil || *p.LeakNotificationsEnabled
}

// PressureAlertsEnabled defaults to true when the key is absent.
func (p *Preferences) PressureAlertsEnabled() bool {
	return p.PressureNotificationsEnabled == nil || *p.PressureNotificationsEnabled
}

// LoadPreferences reads the preferences document. A missing or malformed
// file is not an error: nil means "render defaults".
func LoadPreferences(path string) *Preferences {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	return &p
}

// minutesToClock renders minutes past midnight as HH:MM, wrapping at 24h.
func minutesToClock(minutes int) string {
	const day = 24 * 60
	minutes %= day
	if minutes < 0 {
		minutes += day
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
