package domain

// Profile is the learned behavioral baseline for one (site, username) pair.
//
// The distinct-value lists keep first-appearance order; they are sets in
// spirit and membership is what matters. TypicalHours is kept sorted.
// StdTypingSpeed is computed once at creation and is not maintained by
// incremental updates (see profile.Builder.Fold).
type Profile struct {
	AvgTypingSpeed     *float64 `json:"avg_typing_speed"`
	StdTypingSpeed     *float64 `json:"std_typing_speed"`
	DeviceFingerprints []string `json:"device_fingerprints"`
	Locations          []string `json:"locations"`
	UserAgents         []string `json:"user_agents"`
	IPAddresses        []string `json:"ip_addresses"`
	TypicalHours       []int    `json:"typical_hours"`
	Samples            int      `json:"samples"`
}

// Clone returns a deep copy so stores can hand out profiles without
// exposing their internal state to concurrent mutation.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := &Profile{
		DeviceFingerprints: append([]string(nil), p.DeviceFingerprints...),
		Locations:          append([]string(nil), p.Locations...),
		UserAgents:         append([]string(nil), p.UserAgents...),
		IPAddresses:        append([]string(nil), p.IPAddresses...),
		TypicalHours:       append([]int(nil), p.TypicalHours...),
		Samples:            p.Samples,
	}
	if p.AvgTypingSpeed != nil {
		v := *p.AvgTypingSpeed
		c.AvgTypingSpeed = &v
	}
	if p.StdTypingSpeed != nil {
		v := *p.StdTypingSpeed
		c.StdTypingSpeed = &v
	}
	return c
}
