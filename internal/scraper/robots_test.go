package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestRobotsGateStandardStrategy(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprintln(w, "User-agent: *\nDisallow: /blocked")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gate, err := NewRobotsGate(srv.URL, RobotsStrategyStandard, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	if !gate.Allowed(ctx, srv.URL+"/allowed") {
		t.Fatal("expected allowed path to pass robots")
	}
	if gate.Allowed(ctx, srv.URL+"/blocked") {
		t.Fatal("expected blocked path to be denied")
	}
}

func TestRobotsGatePermissiveWildcardQuirk(t *testing.T) {
	ctx := context.Background()

	// The wildcard group carries an empty Disallow, which the
	// permissive interpretation treats as opening the whole site even
	// though other directives forbid /blocked.
	robots := "User-agent: googlebot\nDisallow: /blocked\n\nUser-agent: *\nDisallow:\nDisallow: /blocked\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, robots)
	}))
	defer srv.Close()

	permissive, err := NewRobotsGate(srv.URL, RobotsStrategyPermissive, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	if !permissive.Allowed(ctx, srv.URL+"/blocked") {
		t.Fatal("permissive strategy should allow everything when a wildcard group has an empty Disallow")
	}

	standard, err := NewRobotsGate(srv.URL, RobotsStrategyStandard, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	if standard.Allowed(ctx, srv.URL+"/blocked") {
		t.Fatal("standard strategy should still deny the disallowed path")
	}
}

func TestRobotsGatePermissiveFallsBackToStandard(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "User-agent: *\nDisallow: /private")
	}))
	defer srv.Close()

	gate, err := NewRobotsGate(srv.URL, RobotsStrategyPermissive, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	if !gate.Allowed(ctx, srv.URL+"/public") {
		t.Fatal("expected public path to be allowed")
	}
	if gate.Allowed(ctx, srv.URL+"/private") {
		t.Fatal("expected private path to be denied without an allow-all wildcard group")
	}
}

func TestRobotsGateUnreachableAllowsAll(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close() // connection refused from here on

	gate, err := NewRobotsGate(srv.URL, RobotsStrategyStandard, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	if !gate.Allowed(ctx, srv.URL+"/anything") {
		t.Fatal("unreachable robots.txt should allow all URLs")
	}
}

func TestRobotsGateNon200AllowsAll(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	gate, err := NewRobotsGate(srv.URL, RobotsStrategyStandard, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	if !gate.Allowed(ctx, srv.URL+"/anything") {
		t.Fatal("missing robots.txt should allow all URLs")
	}
}

func TestRobotsGateFetchesPerCall(t *testing.T) {
	ctx := context.Background()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprintln(w, "User-agent: *\nDisallow: /blocked")
	}))
	defer srv.Close()

	gate, err := NewRobotsGate(srv.URL, RobotsStrategyStandard, "test-agent", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRobotsGate() error = %v", err)
	}
	gate.Allowed(ctx, srv.URL+"/a")
	gate.Allowed(ctx, srv.URL+"/b")
	if requests != 2 {
		t.Fatalf("expected one robots fetch per call, got %d fetches", requests)
	}
}

func TestAllowAllGate(t *testing.T) {
	gate := NewAllowAllGate()
	if !gate.Allowed(context.Background(), "https://example.com/whatever") {
		t.Fatal("allow-all gate should permit URLs")
	}
}

func TestNewRobotsGateRejectsBareHost(t *testing.T) {
	if _, err := NewRobotsGate("example.com", RobotsStrategyStandard, "ua", zap.NewNop()); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestParseRobotsStrategy(t *testing.T) {
	for _, raw := range []string{"permissive", "Standard", " PERMISSIVE "} {
		if _, err := ParseRobotsStrategy(raw); err != nil {
			t.Fatalf("ParseRobotsStrategy(%q) error = %v", raw, err)
		}
	}
	if _, err := ParseRobotsStrategy("lenient"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
