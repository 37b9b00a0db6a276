package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loginwatch/platform/internal/domain"
)

// Rule point values. Rules accumulate independently; an event can trigger
// several at once and there is no cap.
const (
	typingSpeedLimit  = 200.0
	pointsTyping      = 0.3
	pointsLocation    = 0.4
	pointsDevice      = 0.3
	pointsLocShift    = 0.4
	pointsAccessTime  = 0.2
	nightStartHour    = 6
	nightEndHour      = 22
)

// RuleScorer evaluates a login event against the current session state
// using a fixed set of additive point rules. Stateless; all per-user state
// lives in the session.
type RuleScorer struct {
	allowedLocations []string
}

// NewRuleScorer creates a rule scorer with the given location allow-list
// (defaults to IN, US, UK when empty).
func NewRuleScorer(allowedLocations []string) *RuleScorer {
	if len(allowedLocations) == 0 {
		allowedLocations = []string{"IN", "US", "UK"}
	}
	return &RuleScorer{allowedLocations: allowedLocations}
}

// Score accumulates risk points for ev given the session's last-seen state.
// A malformed access time silently skips the off-hours rule; no rule may
// abort the evaluation.
func (r *RuleScorer) Score(ev domain.SessionEvent, sess *domain.Session) Assessment {
	reasons := []string{}
	factors := []string{}
	score := 0.0

	if ev.TypingSpeed > typingSpeedLimit {
		reasons = append(reasons, "Unusually high typing speed")
		factors = append(factors, "typing_speed")
		score += pointsTyping
	}

	if !contains(r.allowedLocations, ev.Location) {
		reasons = append(reasons, fmt.Sprintf("Unusual login location: %s", ev.Location))
		factors = append(factors, "location")
		score += pointsLocation
	}

	if sess.LastDeviceFingerprint != "" && sess.LastDeviceFingerprint != ev.DeviceFingerprint {
		reasons = append(reasons, "Device fingerprint changed")
		factors = append(factors, "device_fingerprint")
		score += pointsDevice
	}

	if sess.LastLocation != "" && sess.LastLocation != ev.Location {
		reasons = append(reasons, fmt.Sprintf("Sudden location shift from %s to %s", sess.LastLocation, ev.Location))
		factors = append(factors, "location_shift")
		score += pointsLocShift
	}

	if hour, ok := clockHour(ev.AccessTime); ok && (hour < nightStartHour || hour > nightEndHour) {
		reasons = append(reasons, fmt.Sprintf("Unusual access time: %s", ev.AccessTime))
		factors = append(factors, "access_time")
		score += pointsAccessTime
	}

	return Assessment{
		Suspicious:  score > 0,
		Score:       score,
		Reasons:     reasons,
		RiskFactors: factors,
	}
}

// clockHour parses the leading hour of an "HH:MM"-style access time.
func clockHour(accessTime string) (int, bool) {
	head, _, found := strings.Cut(accessTime, ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return h, true
}
