package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"housemonitor/internal/db"
	"housemonitor/internal/db/migrate"
	"housemonitor/internal/security"
	"housemonitor/internal/session/domain"
)

func TestPostgresRepository_TokenLifecycle(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if err := migrate.Run(dsn, migrate.Up); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Skipf("Database connection failed: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Exec("DELETE FROM remember_tokens WHERE user_id = 1"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	repo := NewPostgresRepository(conn, 5*time.Second)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	var hashes []string
	for i := 0; i < 11; i++ {
		raw, _ := security.NewToken()
		tok := &domain.RememberToken{
			UserID:     1,
			TokenHash:  security.HashToken(raw),
			ExpiresAt:  base.Add(domain.RememberTTL),
			DeviceInfo: "test",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, tok); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if tok.ID == 0 {
			t.Fatal("Create should set ID")
		}
		hashes = append(hashes, tok.TokenHash)
	}

	n, err := repo.PruneKeepLatest(ctx, 1, domain.MaxRememberTokens)
	if err != nil {
		t.Fatalf("PruneKeepLatest: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	if got, _ := repo.GetByTokenHash(ctx, hashes[0]); got != nil {
		t.Error("oldest token should be pruned")
	}
	got, err := repo.GetByTokenHash(ctx, hashes[10])
	if err != nil || got == nil {
		t.Fatalf("GetByTokenHash(newest) = %v, %v", got, err)
	}

	used := base.Add(time.Hour)
	if err := repo.TouchLastUsed(ctx, hashes[10], used); err != nil {
		t.Fatalf("TouchLastUsed: %v", err)
	}
	got, _ = repo.GetByTokenHash(ctx, hashes[10])
	if got.LastUsedAt == nil || !got.LastUsedAt.Equal(used) {
		t.Errorf("LastUsedAt = %v, want %v", got.LastUsedAt, used)
	}

	if err := repo.DeleteByTokenHash(ctx, hashes[10]); err != nil {
		t.Fatalf("DeleteByTokenHash: %v", err)
	}
	if got, _ := repo.GetByTokenHash(ctx, hashes[10]); got != nil {
		t.Error("token should be deleted")
	}
	if got, _ := repo.GetByTokenHash(ctx, hashes[9]); got == nil {
		t.Error("other tokens must survive deleting one")
	}
}
