package domain

// Session is the rolling per-username state used by the rule-based detector:
// the last-seen login attributes plus the account lock flag.
//
// Once Locked is true, every further login event for the username is
// rejected until an explicit unlock command clears the flag. There is no
// automatic expiry.
type Session struct {
	Username              string `json:"username"`
	Locked                bool   `json:"locked"`
	LastLocation          string `json:"last_location,omitempty"`
	LastDeviceFingerprint string `json:"last_device_fingerprint,omitempty"`
	LastAccessTime        string `json:"last_access_time,omitempty"`
}

// Observe records the event's attributes as the session's last-seen values.
// Called on every accepted event, alert or not.
func (s *Session) Observe(ev SessionEvent) {
	s.LastLocation = ev.Location
	s.LastDeviceFingerprint = ev.DeviceFingerprint
	s.LastAccessTime = ev.AccessTime
}
