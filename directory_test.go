package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

func TestDirectory_ListPreservesServerOrder(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]types.Conversation{
			{ID: 30, Kind: types.KindGroup, Name: "ops"},
			{ID: 10, Kind: types.KindDirect},
			{ID: 20, Kind: types.KindDirect},
		})
	}))
	defer srv.Close()

	d := newDirectory(srv.Client(), srv.URL, types.Participant{ID: 7, Role: types.RoleEmployee})
	convs, err := d.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for i, want := range []int64{30, 10, 20} {
		if convs[i].ID != want {
			t.Fatalf("order not preserved: %+v", convs)
		}
	}
}

func TestDirectory_FailureKeepsCache(t *testing.T) {
	t.Parallel()
	var fail bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		f := fail
		mu.Unlock()
		if f {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode([]types.Conversation{{ID: 10, Kind: types.KindDirect}})
	}))
	defer srv.Close()

	d := newDirectory(srv.Client(), srv.URL, types.Participant{ID: 7, Role: types.RoleEmployee})
	if _, err := d.List(context.Background()); err != nil {
		t.Fatalf("initial list failed: %v", err)
	}

	mu.Lock()
	fail = true
	mu.Unlock()

	_, err := d.List(context.Background())
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
	if got := d.Conversations(); len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("cache must survive a failed refresh: %+v", got)
	}
}

// A freshly registered conversation stays visible even when the next refresh
// does not include it yet.
func TestDirectory_OptimisticRegistrationRetained(t *testing.T) {
	t.Parallel()
	var includeNew bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inc := includeNew
		mu.Unlock()
		convs := []types.Conversation{{ID: 10, Kind: types.KindDirect}}
		if inc {
			convs = append([]types.Conversation{{ID: 99, Kind: types.KindGroup, Name: "new"}}, convs...)
		}
		_ = json.NewEncoder(w).Encode(convs)
	}))
	defer srv.Close()

	d := newDirectory(srv.Client(), srv.URL, types.Participant{ID: 7, Role: types.RoleEmployee})
	if _, err := d.List(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	created := types.Conversation{ID: 99, Kind: types.KindGroup, Name: "new"}
	if err := d.RegisterNewConversation(context.Background(), created); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	got := d.Conversations()
	if len(got) != 2 || got[0].ID != 99 {
		t.Fatalf("new conversation must sit at the head: %+v", got)
	}

	// Another refresh still lacking the new conversation keeps it.
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	got = d.Conversations()
	if len(got) != 2 || got[0].ID != 99 {
		t.Fatalf("optimistic entry lost across refresh: %+v", got)
	}

	// Once the server confirms it, the pending copy is dropped in favour of
	// the server's ordering.
	mu.Lock()
	includeNew = true
	mu.Unlock()
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	got = d.Conversations()
	if len(got) != 2 || got[0].ID != 99 || got[1].ID != 10 {
		t.Fatalf("confirmed list wrong: %+v", got)
	}
}

func TestDirectory_ObserverFiresBeforeReturn(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]types.Conversation{{ID: 10, Kind: types.KindDirect}})
	}))
	defer srv.Close()

	d := newDirectory(srv.Client(), srv.URL, types.Participant{ID: 7, Role: types.RoleEmployee})
	fired := 0
	d.SetObserver(func() { fired++ })

	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if fired == 0 {
		t.Fatal("observer must fire before Refresh returns")
	}
}
