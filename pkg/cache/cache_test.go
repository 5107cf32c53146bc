package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"picklist/models"
	"picklist/pkg/marks"
)

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()
	if err := c.Set(ctx, "k", &models.Detection{MD5: "k"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	d, err := c.Get(ctx, "k")
	if err != nil || d != nil {
		t.Fatalf("expected miss, got %+v %v", d, err)
	}
}

// Set PICKLIST_TEST_REDIS=host:port to run against a live server.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("PICKLIST_TEST_REDIS")
	if addr == "" {
		t.Skip("PICKLIST_TEST_REDIS not set")
	}
	r := NewRedis(RedisConfig{Addr: addr, TTL: time.Minute})
	defer r.Close()
	ctx := context.Background()
	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := "test:" + time.Now().Format("150405.000000000")
	miss, err := r.Get(ctx, key)
	if err != nil || miss != nil {
		t.Fatalf("expected miss, got %+v %v", miss, err)
	}
	in := &models.Detection{MD5: key, Marks: []marks.Label{marks.Check, marks.Cross}, Width: 40, Height: 30}
	if err := r.Set(ctx, key, in); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := r.Get(ctx, key)
	if err != nil || out == nil {
		t.Fatalf("expected hit, got %+v %v", out, err)
	}
	if out.Width != 40 || len(out.Marks) != 2 || out.Marks[0] != marks.Check || out.Marks[1] != marks.Cross {
		t.Fatalf("unexpected cached detection %+v", out)
	}
}
