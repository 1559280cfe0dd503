package store

import (
	"context"
	"os"
	"testing"
	"time"

	"housemonitor/internal/session/domain"

	"github.com/redis/go-redis/v9"
)

func TestKey(t *testing.T) {
	if got := Key("abc"); got != "hm:session:v1:abc" {
		t.Errorf("Key = %q", got)
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}

	store := NewRedisStore(client)
	login := time.Now().UTC().Truncate(time.Second)
	in := &domain.Session{ID: "it-" + login.Format("150405"), Authenticated: true, UserID: 1, CSRFToken: "tok", LoginAt: login}
	if err := store.Save(ctx, in, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, in.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || !got.Authenticated || got.CSRFToken != "tok" || !got.LoginAt.Equal(login) {
		t.Fatalf("Get = %+v", got)
	}
	ttl := client.TTL(ctx, Key(in.ID)).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}
	if err := store.Delete(ctx, in.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, in.ID); got != nil {
		t.Error("session should be gone after Delete")
	}
}
