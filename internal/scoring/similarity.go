// Package scoring implements the two detector strategies: a weighted
// baseline-similarity scorer and an additive rule scorer, plus the alert
// engine that turns rule scores into actionable alerts.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/geo"
	"github.com/loginwatch/platform/internal/profile"
)

// Assessment is the outcome of evaluating one login event.
//
// For the similarity detector Score is the weighted agreement in [0,1]
// (lower is more suspicious); for the rule detector it is the accumulated
// risk points (higher is more suspicious).
type Assessment struct {
	Suspicious  bool     `json:"suspicious"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
	RiskFactors []string `json:"risk_factors"`
}

// Weights distributes the similarity across the six features. The defaults
// sum to 1.0 so a perfectly matching event scores exactly 1.0.
type Weights struct {
	Typing    float64
	Device    float64
	Location  float64
	Time      float64
	UserAgent float64
	IP        float64
}

// DefaultWeights returns the standard feature weighting.
func DefaultWeights() Weights {
	return Weights{Typing: 0.35, Device: 0.25, Location: 0.15, Time: 0.10, UserAgent: 0.10, IP: 0.05}
}

// Cutoffs inside the feature rules. The outer suspicion threshold is
// configurable on the scorer; these are not.
const (
	typingReasonCutoff = 0.6
	uaMatchCutoff      = 0.45
)

// SimilarityScorer compares a live login event against a learned baseline
// profile and produces a weighted similarity with human-readable reasons.
type SimilarityScorer struct {
	weights   Weights
	threshold float64
	resolver  geo.Resolver // optional, nil disables the geo-IP feature
	geoWait   time.Duration
	logger    *slog.Logger
}

// NewSimilarityScorer creates a scorer. resolver may be nil; when set, a
// best-effort geo-IP check contributes an extra reason on mismatch but never
// alters the six feature scores.
func NewSimilarityScorer(w Weights, threshold float64, resolver geo.Resolver, geoWait time.Duration, logger *slog.Logger) *SimilarityScorer {
	if geoWait <= 0 {
		geoWait = 3 * time.Second
	}
	return &SimilarityScorer{weights: w, threshold: threshold, resolver: resolver, geoWait: geoWait, logger: logger}
}

// Score evaluates ev against p. The caller guarantees p is non-nil; a
// missing profile is a PROFILE_NOT_FOUND condition handled upstream.
//
// Each feature degrades to a neutral 1.0 when either side lacks the data,
// so partial events are never penalized for absence alone. Feature
// extraction never aborts the computation.
func (s *SimilarityScorer) Score(ctx context.Context, ev domain.LoginEvent, p *domain.Profile) Assessment {
	reasons := []string{}

	typing := 1.0
	if p.AvgTypingSpeed != nil && ev.TypingSpeed != nil {
		avg := *p.AvgTypingSpeed
		diff := math.Abs(*ev.TypingSpeed - avg)
		denom := math.Max(1.0, avg)
		if p.StdTypingSpeed != nil && *p.StdTypingSpeed > 0 {
			denom = *p.StdTypingSpeed
		}
		typing = clamp01(1.0 - diff/denom)
		if typing < typingReasonCutoff {
			reasons = append(reasons, fmt.Sprintf("Typing speed deviates (got %v, avg %v)", *ev.TypingSpeed, avg))
		}
	}

	device := 0.0
	if ev.DeviceFingerprint != "" && contains(p.DeviceFingerprints, ev.DeviceFingerprint) {
		device = 1.0
	} else {
		reasons = append(reasons, "Device fingerprint mismatch")
	}

	ua := 1.0
	if len(p.UserAgents) > 0 && ev.UserAgent != "" {
		best := 0.0
		for _, known := range p.UserAgents {
			if known == "" {
				continue
			}
			best = math.Max(best, Jaccard(known, ev.UserAgent))
		}
		if best >= uaMatchCutoff {
			ua = 1.0
		} else {
			ua = 0.0
			reasons = append(reasons, "User-Agent mismatch")
		}
	}

	location := 0.0
	if ev.Location != "" && contains(p.Locations, ev.Location) {
		location = 1.0
	} else {
		reasons = append(reasons, fmt.Sprintf("Unusual login location: %s", ev.Location))
	}

	timeScore := 1.0
	if ev.AccessTime != "" && profile.HasHourField(ev.AccessTime) && len(p.TypicalHours) > 0 {
		if hour, ok := profile.Hour(ev.AccessTime); !ok {
			// The hour field exists but is not numeric: neither a
			// match nor a mismatch.
			timeScore = 0.5
		} else if containsInt(p.TypicalHours, hour) {
			timeScore = 1.0
		} else {
			timeScore = 0.0
			reasons = append(reasons, fmt.Sprintf("Unusual login hour: %d", hour))
		}
	}

	ip := 1.0
	if len(p.IPAddresses) > 0 && ev.IPAddress != "" {
		ip = 0.0
		for _, known := range p.IPAddresses {
			// Prefix match supports subnet-style shorthand, e.g. a stored
			// "10.0.0" covers "10.0.0.5".
			if known != "" && strings.HasPrefix(ev.IPAddress, known) {
				ip = 1.0
				break
			}
		}
		if ip == 0.0 {
			reasons = append(reasons, "IP address mismatch")
		}
	}

	if s.resolver != nil && ev.IPAddress != "" {
		if reason := s.geoReason(ctx, ev.IPAddress, p.Locations); reason != "" {
			reasons = append(reasons, reason)
		}
	}

	similarity := s.weights.Typing*typing +
		s.weights.Device*device +
		s.weights.Location*location +
		s.weights.Time*timeScore +
		s.weights.UserAgent*ua +
		s.weights.IP*ip
	similarity = round3(similarity)

	return Assessment{
		Suspicious:  similarity < s.threshold,
		Score:       similarity,
		Reasons:     reasons,
		RiskFactors: RiskFactors(reasons),
	}
}

// geoReason performs the optional best-effort geo-IP check. Any failure is
// swallowed; an empty string means no finding.
func (s *SimilarityScorer) geoReason(ctx context.Context, ip string, locations []string) string {
	ctx, cancel := context.WithTimeout(ctx, s.geoWait)
	defer cancel()

	loc, err := s.resolver.Resolve(ctx, ip)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("geo-ip lookup failed", "ip", ip, "error", err)
		}
		return ""
	}
	for _, known := range locations {
		if known == "" {
			continue
		}
		if (loc.Country != "" && strings.Contains(known, loc.Country)) ||
			(loc.Region != "" && strings.Contains(known, loc.Region)) ||
			strings.Contains(loc.Country, known) ||
			strings.Contains(loc.Region, known) {
			return ""
		}
	}
	return fmt.Sprintf("Geo-IP location %s/%s unusual", loc.Country, loc.Region)
}

// Jaccard computes token-set similarity between two strings: intersection
// over union of the lower-cased whitespace tokens longer than two
// characters. Symmetric by construction.
func Jaccard(a, b string) float64 {
	sa := tokens(a)
	sb := tokens(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// RiskFactors derives machine-usable labels from reason strings by taking
// each reason's first whitespace token, lower-cased. Lossy but acceptable:
// risk factors are advisory labels, not identifiers.
func RiskFactors(reasons []string) []string {
	factors := []string{}
	for _, r := range reasons {
		fields := strings.Fields(r)
		if len(fields) == 0 {
			continue
		}
		factors = append(factors, strings.ToLower(fields[0]))
	}
	return factors
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(s)) {
		if len(t) > 2 {
			set[t] = struct{}{}
		}
	}
	return set
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
