package cache

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("game_ab12"); got != "fourline:game:game_ab12" {
		t.Fatalf("key=%q", got)
	}
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New(nil, 0)
	if c.ttl != DefaultTTL {
		t.Fatalf("ttl=%s, want %s", c.ttl, DefaultTTL)
	}
	c = New(nil, time.Minute)
	if c.ttl != time.Minute {
		t.Fatalf("ttl=%s, want 1m", c.ttl)
	}
}
