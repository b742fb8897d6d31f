package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	bucket := newTokenBucket(5, 1.0) // 5 tokens, 1 token per second

	// Full burst is allowed immediately
	for i := 0; i < 5; i++ {
		if !bucket.allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// Next request is denied
	if bucket.allow() {
		t.Error("Expected request to be denied once tokens are exhausted")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(5, 10.0) // refills fast for test speed

	for i := 0; i < 5; i++ {
		bucket.allow()
	}
	if bucket.allow() {
		t.Error("Expected request to be denied before refill")
	}

	time.Sleep(150 * time.Millisecond)

	if !bucket.allow() {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestTokenBucket_Status(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 4; i++ {
		bucket.allow()
	}

	remaining, resetTime := bucket.status()
	if remaining != 6 {
		t.Errorf("Expected 6 remaining tokens, got %d", remaining)
	}
	if resetTime.Before(time.Now().Add(-time.Second)) {
		t.Error("Reset time should not be in the past")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/chat/message", "POST")
		if !allowed {
			t.Fatal("Disabled limiter must allow everything")
		}
	}
}

func TestLimiter_EndpointLimit(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/resume/analyze", Method: "POST", Limit: 3, Window: time.Hour, Burst: 3},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/resume/analyze", "POST")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}

	allowed, info := limiter.Allow("1.2.3.4", "/resume/analyze", "POST")
	if allowed {
		t.Error("Expected request over the endpoint limit to be denied")
	}
	if info.Limit != 3 {
		t.Errorf("Expected limit 3 in info, got %d", info.Limit)
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected a positive RetryAfter on a denied request")
	}

	// A different client has its own bucket
	allowed, _ = limiter.Allow("5.6.7.8", "/resume/analyze", "POST")
	if !allowed {
		t.Error("Expected a different client to be unaffected")
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/chat/message", "POST")
		if !allowed {
			t.Fatal("Whitelisted client must never be limited")
		}
	}

	allowed, _ := limiter.Allow("10.0.0.2", "/chat/message", "POST")
	if allowed {
		t.Error("Blacklisted client must always be denied")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	if ec := MatchEndpoint("/resume/analyze", "POST", configs); ec == nil || ec.Limit != 20 {
		t.Error("Expected exact match for POST /resume/analyze")
	}

	// Prefix match for parameterized paths
	if ec := MatchEndpoint("/chat/load-context/123e4567-e89b-12d3-a456-426614174000", "POST", configs); ec == nil {
		t.Error("Expected prefix match for /chat/load-context/{user_id}")
	}

	// Health check is unlimited
	if ec := MatchEndpoint("/health", "GET", configs); ec == nil || ec.Limit != 0 {
		t.Error("Expected unlimited config for GET /health")
	}

	// Reads fall through to the default
	if ec := MatchEndpoint("/roadmap/latest/abc", "GET", configs); ec != nil {
		t.Error("Expected no endpoint config for plain reads")
	}
}
