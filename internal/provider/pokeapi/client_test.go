package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	retries  int
}

func (r *recordingObserver) ObserveFetch(resource, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, resource+":"+outcome)
}

func (r *recordingObserver) ObserveRetry(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func newTestClient(srvURL string, obs Observer) *Client {
	return NewClient(Options{
		BaseURL:     srvURL + "/api/v2",
		UserAgent:   "catalog-test",
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		Observer:    obs,
	}, nil)
}

func TestGet_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "catalog-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id": 25, "name": "pikachu"}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := newTestClient(srv.URL, obs)

	var out Pokemon
	if err := c.Get(context.Background(), "pokemon/25", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Name != "pikachu" {
		t.Errorf("name = %q", out.Name)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if obs.retries != 1 {
		t.Errorf("retries observed = %d, want 1", obs.retries)
	}
	if len(obs.outcomes) != 2 || obs.outcomes[0] != "pokemon:transient" || obs.outcomes[1] != "pokemon:ok" {
		t.Errorf("outcomes = %v", obs.outcomes)
	}
}

func TestGet_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	err := c.Get(context.Background(), "move/pound", &Move{})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v, want wrapped 500 StatusError", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGet_NotFoundIsRetriedInDefaultMode(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	err := c.Get(context.Background(), "pokemon/99999", &Pokemon{})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("default mode must not return ErrNotFound")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGetOptional_NotFoundShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	_, err := c.Pokemon(context.Background(), "missingno-mega", true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_DecodeErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"id": "not-a-number"`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	if err := c.Get(context.Background(), "pokemon/1", &Pokemon{}); !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_ContextCancelledDuringDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, MaxAttempts: 5, RetryDelay: time.Hour}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "type/fire", &Type{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestStatusError_Transient(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusRequestTimeout, true},
		{http.StatusTooEarly, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusNotFound, false},
		{http.StatusBadRequest, false},
		{http.StatusForbidden, false},
	}
	for _, tt := range tests {
		e := &StatusError{StatusCode: tt.code}
		if got := e.Transient(); got != tt.want {
			t.Errorf("Transient(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	c := NewClient(Options{BaseURL: "https://pokeapi.co/api/v2/"}, nil)
	if got := c.URL("pokemon/1"); got != "https://pokeapi.co/api/v2/pokemon/1" {
		t.Errorf("URL(relative) = %q", got)
	}
	abs := "https://pokeapi.co/api/v2/machine/1191/"
	if got := c.URL(abs); got != abs {
		t.Errorf("URL(absolute) = %q", got)
	}
}

func TestResourceOf(t *testing.T) {
	base := "https://pokeapi.co/api/v2"
	tests := map[string]string{
		base + "/pokemon/1":               "pokemon",
		base + "/item?limit=10":           "item",
		"http://mirror/api/v2/machine/4/": "machine",
		"http://elsewhere/":               "unknown",
	}
	for u, want := range tests {
		if got := resourceOf(u, base); got != want {
			t.Errorf("resourceOf(%q) = %q, want %q", u, got, want)
		}
	}
}

func TestDamageRelations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/type/water" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name":"water","damage_relations":{
			"double_damage_from":[{"name":"electric","url":""},{"name":"grass","url":""}],
			"half_damage_from":[{"name":"fire","url":""},{"name":"water","url":""},{"name":"ice","url":""},{"name":"steel","url":""}],
			"no_damage_from":[]}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	rel, err := c.DamageRelations(context.Background(), "water")
	if err != nil {
		t.Fatalf("DamageRelations: %v", err)
	}
	if len(rel.DoubleDamageFrom) != 2 || rel.DoubleDamageFrom[0] != "electric" {
		t.Errorf("double = %v", rel.DoubleDamageFrom)
	}
	if len(rel.HalfDamageFrom) != 4 {
		t.Errorf("half = %v", rel.HalfDamageFrom)
	}
	if rel.NoDamageFrom == nil || len(rel.NoDamageFrom) != 0 {
		t.Errorf("none = %v, want empty non-nil", rel.NoDamageFrom)
	}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/item" || r.URL.Query().Get("offset") != "0" || r.URL.Query().Get("limit") == "" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`{"count":2,"results":[{"name":"potion","url":"u1"},{"name":"tm01","url":"u2"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	got, err := c.List(context.Background(), "item")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[1].Name != "tm01" {
		t.Errorf("results = %+v", got)
	}
}
