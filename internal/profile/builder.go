// Package profile derives behavioral baselines from login events and folds
// new events into them incrementally.
package profile

import (
	"math"
	"sort"
	"strconv"

	"github.com/loginwatch/platform/internal/domain"
)

// Access times carry the hour at the fixed ISO-8601 offset ("...THH:MM...").
// Short forms like "HH:MM" have no hour at that offset and are skipped.
const hourOffset = 11

// HasHourField reports whether accessTime is long enough to carry an
// hour-of-day at the fixed ISO-8601 offset.
func HasHourField(accessTime string) bool {
	return len(accessTime) >= hourOffset+2
}

// Hour parses the hour at the fixed ISO-8601 offset. The second return is
// false when the field is not numeric. Callers must check HasHourField first.
func Hour(accessTime string) (int, bool) {
	h, err := strconv.Atoi(accessTime[hourOffset : hourOffset+2])
	if err != nil {
		return 0, false
	}
	return h, true
}

// FromEvents builds a baseline profile from a batch of historical events.
//
// The typing-speed average is the arithmetic mean of the present values, nil
// when none are present. The deviation is the population standard deviation,
// computed only when at least two typing samples exist. Malformed access
// times are skipped silently.
func FromEvents(events []domain.LoginEvent) *domain.Profile {
	p := &domain.Profile{
		DeviceFingerprints: []string{},
		Locations:          []string{},
		UserAgents:         []string{},
		IPAddresses:        []string{},
		TypicalHours:       []int{},
		Samples:            len(events),
	}

	var typing []float64
	for _, ev := range events {
		if ev.TypingSpeed != nil {
			typing = append(typing, *ev.TypingSpeed)
		}
		p.DeviceFingerprints = appendUnique(p.DeviceFingerprints, ev.DeviceFingerprint)
		p.Locations = appendUnique(p.Locations, ev.Location)
		p.UserAgents = appendUnique(p.UserAgents, ev.UserAgent)
		p.IPAddresses = appendUnique(p.IPAddresses, ev.IPAddress)
		if HasHourField(ev.AccessTime) {
			if h, ok := Hour(ev.AccessTime); ok {
				p.TypicalHours = insertHour(p.TypicalHours, h)
			}
		}
	}

	if len(typing) > 0 {
		var sum float64
		for _, v := range typing {
			sum += v
		}
		avg := sum / float64(len(typing))
		p.AvgTypingSpeed = &avg

		if len(typing) > 1 {
			var sq float64
			for _, v := range typing {
				sq += (v - avg) * (v - avg)
			}
			std := math.Sqrt(sq / float64(len(typing)))
			p.StdTypingSpeed = &std
		}
	}

	return p
}

// Fold updates the profile in place with a single new event and returns it.
//
// The typing-speed mean is maintained with the standard incremental formula;
// the stored deviation is not recomputed and stays frozen at its
// creation-time value while the mean keeps moving. Samples increments
// unconditionally, even when no field changed.
func Fold(p *domain.Profile, ev domain.LoginEvent) *domain.Profile {
	if ev.TypingSpeed != nil {
		if p.AvgTypingSpeed == nil {
			v := *ev.TypingSpeed
			p.AvgTypingSpeed = &v
			p.StdTypingSpeed = nil
		} else {
			newAvg := (*p.AvgTypingSpeed*float64(p.Samples) + *ev.TypingSpeed) / float64(p.Samples+1)
			p.AvgTypingSpeed = &newAvg
		}
	}

	p.DeviceFingerprints = appendUnique(p.DeviceFingerprints, ev.DeviceFingerprint)
	p.UserAgents = appendUnique(p.UserAgents, ev.UserAgent)
	p.IPAddresses = appendUnique(p.IPAddresses, ev.IPAddress)
	p.Locations = appendUnique(p.Locations, ev.Location)

	if HasHourField(ev.AccessTime) {
		if h, ok := Hour(ev.AccessTime); ok {
			p.TypicalHours = insertHour(p.TypicalHours, h)
		}
	}

	p.Samples++
	return p
}

// appendUnique appends v unless empty or already present, preserving
// first-appearance order.
func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// insertHour inserts h keeping the slice sorted, skipping duplicates.
func insertHour(hours []int, h int) []int {
	i := sort.SearchInts(hours, h)
	if i < len(hours) && hours[i] == h {
		return hours
	}
	hours = append(hours, 0)
	copy(hours[i+1:], hours[i:])
	hours[i] = h
	return hours
}
