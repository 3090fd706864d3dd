package federation

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/wire"
)

// recordingLogger captures Info calls so tests can assert the aggregate
// ticker actually logged something, without depending on Clue output.
type recordingLogger struct {
	telemetry.Logger
	mu    sync.Mutex
	infos []string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{Logger: telemetry.NewNoopLogger()}
}

func (l *recordingLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	l.mu.Lock()
	l.infos = append(l.infos, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.infos)
}

var (
	testRedisAddr      string
	testRedisContainer testcontainers.Container
	skipIntegration    bool
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	var containerErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker not available: %v", r)
			}
		}()
		req := testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		}
		testRedisContainer, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()

	if containerErr != nil {
		fmt.Printf("Docker not available, federation integration tests will be skipped: %v\n", containerErr)
		skipIntegration = true
	} else {
		host, err := testRedisContainer.Host(ctx)
		if err != nil {
			fmt.Printf("failed to get container host: %v\n", err)
			skipIntegration = true
		} else {
			port, err := testRedisContainer.MappedPort(ctx, "6379")
			if err != nil {
				fmt.Printf("failed to get container port: %v\n", err)
				skipIntegration = true
			} else {
				testRedisAddr = host + ":" + port.Port()
				probe := redis.NewClient(&redis.Options{Addr: testRedisAddr})
				if err := probe.Ping(ctx).Err(); err != nil {
					fmt.Printf("failed to ping redis: %v\n", err)
					skipIntegration = true
				}
				_ = probe.Close()
			}
		}
	}

	code := m.Run()

	if testRedisContainer != nil {
		_ = testRedisContainer.Terminate(ctx)
	}
	os.Exit(code)
}

func requireRedis(t *testing.T) {
	t.Helper()
	if skipIntegration {
		t.Skip("redis container unavailable, skipping federation integration test")
	}
}

func TestFederation_PublishAndObserveAcrossNodes(t *testing.T) {
	requireRedis(t)
	ctx := context.Background()
	cfg := config.Federation{RedisURL: testRedisAddr, ClusterName: fmt.Sprintf("test-%d", time.Now().UnixNano())}

	a, err := Connect(ctx, cfg, telemetry.NewNoopLogger())
	require.NoError(t, err)
	defer a.Close()

	b, err := Connect(ctx, cfg, telemetry.NewNoopLogger())
	require.NoError(t, err)
	defer b.Close()

	err = a.Publish(ctx, Snapshot{
		PlantName:    "plant-a",
		SymbolicID:   wire.Line,
		State:        lifecycle.Running,
		RegistrySize: 2,
		UpdatedAt:    time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snaps, err := b.Snapshots()
		if err != nil || len(snaps) != 1 {
			return false
		}
		return snaps[0].PlantName == "plant-a" && snaps[0].State == lifecycle.Running
	}, 5*time.Second, 50*time.Millisecond)
}

func TestFederation_StartPublishingTicks(t *testing.T) {
	requireRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Federation{RedisURL: testRedisAddr, ClusterName: fmt.Sprintf("test-%d", time.Now().UnixNano())}

	f, err := Connect(ctx, cfg, telemetry.NewNoopLogger())
	require.NoError(t, err)
	defer f.Close()

	calls := make(chan struct{}, 8)
	err = f.StartPublishing(ctx, "plant-a", 100*time.Millisecond, func() Snapshot {
		select {
		case calls <- struct{}{}:
		default:
		}
		return Snapshot{PlantName: "plant-a", State: lifecycle.Running, UpdatedAt: time.Unix(1700000000, 0).UTC()}
	})
	require.NoError(t, err)

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("expected source callback to fire at least once")
	}

	require.Eventually(t, func() bool {
		snaps, err := f.Snapshots()
		return err == nil && len(snaps) == 1
	}, 5*time.Second, 50*time.Millisecond)

	err = f.StartPublishing(ctx, "plant-a", 100*time.Millisecond, func() Snapshot { return Snapshot{} })
	require.Error(t, err)
}

func TestFederation_StartAggregatingLogsCrossPlantTotals(t *testing.T) {
	requireRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Federation{RedisURL: testRedisAddr, ClusterName: fmt.Sprintf("test-%d", time.Now().UnixNano())}

	logger := newRecordingLogger()
	f, err := Connect(ctx, cfg, logger)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Publish(ctx, Snapshot{PlantName: "plant-a", RegistrySize: 2, UpdatedAt: time.Unix(1700000000, 0).UTC()}))
	require.NoError(t, f.Publish(ctx, Snapshot{PlantName: "plant-b", RegistrySize: 3, UpdatedAt: time.Unix(1700000000, 0).UTC()}))

	require.NoError(t, f.StartAggregating(ctx, 100*time.Millisecond))

	require.Eventually(t, func() bool {
		return logger.count() > 0
	}, 3*time.Second, 50*time.Millisecond)

	// A second call on the same Federation must not start a competing ticker.
	require.Error(t, f.StartAggregating(ctx, 100*time.Millisecond))
}
