package domain

// LoginEvent is a login attempt as observed by an integrating site.
// Every behavioral field is optional; a missing feature degrades to a
// neutral score rather than an error.
type LoginEvent struct {
	Site              string         `json:"site"`
	Username          string         `json:"username"`
	DeviceFingerprint string         `json:"device_fingerprint,omitempty"`
	TypingSpeed       *float64       `json:"typing_speed,omitempty"`
	Location          string         `json:"location,omitempty"`
	AccessTime        string         `json:"access_time,omitempty"` // ISO-8601 or "HH:MM"
	UserAgent         string         `json:"user_agent,omitempty"`
	IPAddress         string         `json:"ip_address,omitempty"`
	Additional        map[string]any `json:"additional,omitempty"`
}

// SessionEvent is the detector intake format: a normalized login event with
// a synthetic id and timestamp, as produced by the reporter's forwarder or
// by the synthetic traffic generator.
type SessionEvent struct {
	EventID           string         `json:"event_id"`
	Timestamp         string         `json:"timestamp"`
	Username          string         `json:"username"`
	DeviceFingerprint string         `json:"device_fingerprint"`
	Location          string         `json:"location"`
	TypingSpeed       float64        `json:"typing_speed"`
	AccessTime        string         `json:"access_time"`
	Additional        map[string]any `json:"additional,omitempty"`
}

// CheckResult is the reporter's answer for a scored login event.
type CheckResult struct {
	Suspicious  bool     `json:"suspicious"`
	Similarity  float64  `json:"similarity"`
	Reasons     []string `json:"reasons"`
	RiskFactors []string `json:"risk_factors"`
	Forwarded   bool     `json:"forwarded"`
}

// Report is the payload forwarded to the risk-intake endpoint when the
// baseline detector flags an event. Score is the inverted similarity so
// that higher means riskier on the receiving side.
type Report struct {
	Username          string   `json:"username"`
	Site              string   `json:"site"`
	DeviceFingerprint string   `json:"device_fingerprint,omitempty"`
	TypingSpeed       *float64 `json:"typing_speed,omitempty"`
	Location          string   `json:"location,omitempty"`
	AccessTime        string   `json:"access_time,omitempty"`
	UserAgent         string   `json:"user_agent,omitempty"`
	IPAddress         string   `json:"ip_address,omitempty"`
	Source            string   `json:"source"`
	Score             float64  `json:"score"`
	Reasons           []string `json:"reasons"`
	RiskFactors       []string `json:"risk_factors"`
}
