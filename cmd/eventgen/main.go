// Command eventgen generates synthetic login traffic: a mix of normal
// events drawn from realistic per-user habits and stolen-credential attack
// events (very fast typing, unexpected countries). Output goes to a JSON
// file, the detector intake, or both.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/loginwatch/platform/internal/domain"
)

var (
	normalLocations = []string{"IN", "US", "UK"}
	attackLocations = []string{"RU", "CN"}
	usernames       = []string{"alice", "bob", "carol", "eve"}
)

func main() {
	var (
		count   = flag.Int("count", 10, "number of normal events")
		attacks = flag.Int("attacks", 3, "number of attack events")
		out     = flag.String("out", "synthetic_events.json", "output file (empty to skip)")
		post    = flag.String("post", "", "detector intake URL to post events to (empty to skip)")
		seed    = flag.Int64("seed", 0, "random seed (0 uses current time)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	faker := gofakeit.New(uint64(*seed))

	events := make([]domain.SessionEvent, 0, *count+*attacks)
	for i := 0; i < *count; i++ {
		events = append(events, normalEvent(rng, faker))
	}
	for i := 0; i < *attacks; i++ {
		events = append(events, attackEvent(rng, faker))
	}

	if *out != "" {
		raw, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			logger.Error("marshal events", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, raw, 0o644); err != nil {
			logger.Error("write events file", "error", err)
			os.Exit(1)
		}
		logger.Info("events written", "path", *out, "count", len(events))
	}

	if *post != "" {
		sendAll(logger, *post, events)
	}
}

func normalEvent(rng *rand.Rand, faker *gofakeit.Faker) domain.SessionEvent {
	return domain.SessionEvent{
		EventID:           uuid.NewString(),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Username:          usernames[rng.Intn(len(usernames))],
		DeviceFingerprint: fmt.Sprintf("dev-%d", 100+rng.Intn(900)),
		Location:          normalLocations[rng.Intn(len(normalLocations))],
		TypingSpeed:       rng.NormFloat64()*40 + 160,
		AccessTime:        fmt.Sprintf("%02d:%02d", 8+rng.Intn(12), rng.Intn(60)),
		Additional: map[string]any{
			"user_agent": faker.UserAgent(),
			"ip_address": faker.IPv4Address(),
		},
	}
}

func attackEvent(rng *rand.Rand, faker *gofakeit.Faker) domain.SessionEvent {
	return domain.SessionEvent{
		EventID:           uuid.NewString(),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Username:          usernames[rng.Intn(len(usernames))],
		DeviceFingerprint: fmt.Sprintf("dev-%d", 100+rng.Intn(900)),
		Location:          attackLocations[rng.Intn(len(attackLocations))],
		TypingSpeed:       220 + rng.Float64()*80,
		AccessTime:        fmt.Sprintf("%02d:%02d", rng.Intn(24), rng.Intn(60)),
		Additional: map[string]any{
			"user_agent": faker.UserAgent(),
			"ip_address": faker.IPv4Address(),
		},
	}
}

func sendAll(logger *slog.Logger, url string, events []domain.SessionEvent) {
	client := &http.Client{Timeout: 10 * time.Second}
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			logger.Error("marshal event", "event_id", ev.EventID, "error", err)
			continue
		}
		resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
		if err != nil {
			logger.Error("send event", "event_id", ev.EventID, "error", err)
			continue
		}
		resp.Body.Close()
		logger.Info("event sent", "event_id", ev.EventID, "status", resp.StatusCode)
	}
}
