package repository

import (
	"context"
	"path/filepath"
	"testing"

	"arena-god/internal/database"
	"arena-god/internal/store"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "arena.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteKV(db, zerolog.Nop())
}

func newRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisKV(rdb, "test:", zerolog.Nop()), mr
}

func exerciseKV(t *testing.T, kv store.KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := kv.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(got) != `{"a":2}` {
		t.Fatalf("value = %s", got)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatalf("key survived delete")
	}
	if err := kv.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("Delete(missing): %v", err)
	}
}

func TestSQLiteKV(t *testing.T) {
	exerciseKV(t, newSQLiteKV(t))
}

func TestRedisKV(t *testing.T) {
	kv, _ := newRedisKV(t)
	exerciseKV(t, kv)
}

func TestRedisKVPrefixAndNoTTL(t *testing.T) {
	kv, mr := newRedisKV(t)
	if err := kv.Set(context.Background(), store.KeyMatchCache, []byte(`{}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:" + store.KeyMatchCache) {
		t.Fatalf("expected prefixed key in redis, have %v", mr.Keys())
	}
	if ttl := mr.TTL("test:" + store.KeyMatchCache); ttl != 0 {
		t.Fatalf("expected no TTL, got %v", ttl)
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	rdb.Close()

	if _, err := NewRedisClient(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStorageOverSQLite(t *testing.T) {
	s := store.NewStorage(newSQLiteKV(t), zerolog.Nop())
	ctx := context.Background()

	progress, err := s.ArenaProgress(ctx)
	if err != nil {
		t.Fatalf("ArenaProgress: %v", err)
	}
	progress.FirstPlaceChampions = append(progress.FirstPlaceChampions, "Ahri")
	if err := s.SetArenaProgress(ctx, progress); err != nil {
		t.Fatalf("SetArenaProgress: %v", err)
	}
	again, err := s.ArenaProgress(ctx)
	if err != nil {
		t.Fatalf("ArenaProgress: %v", err)
	}
	if len(again.FirstPlaceChampions) != 1 || again.FirstPlaceChampions[0] != "Ahri" {
		t.Fatalf("progress = %+v", again)
	}
}
