package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aescanero/dago-node-calculator/internal/calc"
	"github.com/aescanero/dago-node-calculator/internal/handler"
	"github.com/aescanero/dago-node-calculator/internal/router"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil), mr
}

func TestSaveLoad(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	reply := &handler.Reply{
		Text:   "The result is: 4",
		Action: router.ActionCalculate,
		Result: &calc.Result{OK: true, Value: "4"},
	}
	if err := s.Save(ctx, "req-1", reply, time.Hour); err != nil {
		t.Fatalf("save reply: %v", err)
	}

	got, err := s.Load(ctx, "req-1")
	if err != nil {
		t.Fatalf("load reply: %v", err)
	}
	if got.RequestID != "req-1" || got.Ignored {
		t.Errorf("unexpected stored reply: %+v", got)
	}
	if diff := cmp.Diff(reply, got.Reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveIgnored(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "req-2", nil, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "req-2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Ignored || got.Reply != nil {
		t.Errorf("expected ignored marker, got %+v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "req-3", &handler.Reply{Text: "x"}, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(key("req-3")); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Load(ctx, "req-3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired reply, got %v", err)
	}

	if err := s.Save(ctx, "req-4", &handler.Reply{Text: "y"}, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(key("req-4")); ttl != 0 {
		t.Errorf("ttl = %v, want none", ttl)
	}
}

func TestSaveRequiresID(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Save(context.Background(), "", &handler.Reply{}, 0); err == nil {
		t.Fatal("expected error for empty request id")
	}
}
