// Command client is the demo external client: it dials a Plant's external
// endpoint and sends a monotonically increasing sequence number, retrying
// with a fresh connection on timeout, grounded on original_source/
// client.c's Paranoid Pirate client loop.
//
// Environment variables:
//
//	PICKNPACK_PLANT_ENDPOINT - Plant external endpoint (default: "127.0.0.1:9000")
//	PICKNPACK_REQUEST_COUNT  - number of sequence requests to send (default: 5)
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/transport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()
	endpoint := envOr("PICKNPACK_PLANT_ENDPOINT", "127.0.0.1:9000")
	requestCount := envIntOr("PICKNPACK_REQUEST_COUNT", 5)
	timing := config.LoadTiming()

	tr := transport.NewTCP()
	dealer, err := tr.Dial(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("client: connect to %s: %w", endpoint, err)
	}
	defer dealer.Close()

	// A demo client has no business firing requests faster than the plant
	// can reasonably dispatch them; rate.Limiter caps the cadence of new
	// sequence numbers. Retries of one sequence inside sendWithRetry are not
	// throttled by it; they are spaced only by RequestTimeout.
	limiter := rate.NewLimiter(rate.Every(timing.RequestTimeout/time.Duration(timing.ClientRetryBudget)), 1)

	log.Printf("connecting to plant at %s", endpoint)
	for sequence := 1; sequence <= requestCount; sequence++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("client: rate limiter: %w", err)
		}
		reply, err := sendWithRetry(ctx, tr, &dealer, endpoint, sequence, timing)
		if err != nil {
			return fmt.Errorf("client: sequence %d: %w", sequence, err)
		}
		log.Printf("plant replied to sequence %d: %q", sequence, reply)
	}
	return nil
}

// sendWithRetry implements client.c's retry loop: send, poll for a reply up
// to RequestTimeout, and on timeout close and reopen the dealer before
// resending, up to ClientRetryBudget attempts.
func sendWithRetry(ctx context.Context, tr *transport.TCP, dealer *transport.Dealer, endpoint string, sequence int, timing config.Timing) (string, error) {
	request := []byte(strconv.Itoa(sequence))
	retriesLeft := timing.ClientRetryBudget

	for retriesLeft > 0 {
		if err := (*dealer).Send(ctx, [][]byte{request}); err != nil {
			return "", fmt.Errorf("send: %w", err)
		}

		frames, ok, err := (*dealer).Recv(ctx, timing.RequestTimeout)
		if err != nil {
			return "", fmt.Errorf("recv: %w", err)
		}
		if ok && len(frames) == 1 {
			return string(frames[0]), nil
		}

		retriesLeft--
		if retriesLeft == 0 {
			return "", fmt.Errorf("plant unreachable after %d retries", timing.ClientRetryBudget)
		}
		log.Printf("no response from plant, retrying (sequence %d)", sequence)

		_ = (*dealer).Close()
		newDealer, err := tr.Dial(ctx, endpoint)
		if err != nil {
			return "", fmt.Errorf("reconnect: %w", err)
		}
		*dealer = newDealer
	}
	return "", fmt.Errorf("plant unreachable")
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOr(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
