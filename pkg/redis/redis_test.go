package redis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/solar-analytics/parquet-gate/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

// liveClient connects to TEST_REDIS_ADDR (host:port) or skips
func liveClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	host, port, _ := strings.Cut(addr, ":")

	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: true, Host: host, Port: port}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if client.Addr() != "" || client.Redis() != nil {
		t.Error("Expected no address and no connection when disabled")
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *Client

	if client.Enabled() {
		t.Error("Expected nil client to be disabled")
	}

	release, err := NewLock(client, "gate", "validate", time.Minute).Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := release(context.Background()); err != nil {
		t.Errorf("release() error = %v", err)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := New(&config.Config{Redis: config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"}})
	if err == nil {
		t.Fatal("Expected error for unreachable Redis")
	}
	if !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Errorf("error %q does not name the address", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "gate")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	if err := cache.Set(ctx, LatestRunKey, map[string]string{"id": "x"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result map[string]string
	found, err := cache.Get(ctx, LatestRunKey, &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
	if err := cache.Delete(ctx, LatestRunKey); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestLock_Disabled(t *testing.T) {
	lock := NewLock(disabledClient(t), "gate", "validate", time.Minute)
	ctx := context.Background()

	release, err := lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	// a second holder is also granted: there is nothing to coordinate with
	if _, err := lock.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if err := release(ctx); err != nil {
		t.Errorf("release() error = %v", err)
	}
}

func TestRunKey(t *testing.T) {
	if got := RunKey("abc"); got != "validation:run:abc" {
		t.Errorf("RunKey() = %q", got)
	}
}

func TestCache_Live(t *testing.T) {
	cache := NewCache(liveClient(t), "gate-test")
	ctx := context.Background()

	if err := cache.Set(ctx, LatestRunKey, map[string]string{"id": "x"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got map[string]string
	if found, err := cache.Get(ctx, LatestRunKey, &got); err != nil || !found || got["id"] != "x" {
		t.Fatalf("Get() = %v, %v, %v", got, found, err)
	}

	if err := cache.Delete(ctx, LatestRunKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if found, err := cache.Get(ctx, LatestRunKey, &got); err != nil || found {
		t.Errorf("Get() after Delete = %v, %v", found, err)
	}
}

func TestLock_Live(t *testing.T) {
	lock := NewLock(liveClient(t), "gate-test", "validate", time.Minute)
	ctx := context.Background()

	release, err := lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := lock.Acquire(ctx); !errors.Is(err, ErrLocked) {
		t.Errorf("second Acquire() error = %v, want ErrLocked", err)
	}
	if err := release(ctx); err != nil {
		t.Fatalf("release() error = %v", err)
	}

	release, err = lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = release(ctx)
}
