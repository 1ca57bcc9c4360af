package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListByAuthors(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/posts/by_users" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("user_ids") != "1,2,3" {
			t.Fatalf("unexpected user_ids: %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Internal-Key") != "internal-secret" {
			t.Fatalf("expected internal key header")
		}
		_ = json.NewEncoder(w).Encode([]Post{
			{ID: 2, UserID: 1, Text: "second", CreatedAt: now},
			{ID: 1, UserID: 2, Text: "first", CreatedAt: now.Add(-time.Hour), Photos: []Photo{{ID: 9, Filename: "a.jpg"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "internal-secret", srv.Client())
	result, err := c.ListByAuthors(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("list by authors: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(result))
	}
	if len(result[1].Photos) != 1 || result[1].Photos[0].Filename != "a.jpg" {
		t.Fatalf("expected photo refs preserved")
	}
}

func TestListByAuthorsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k", nil)
	_, err := c.ListByAuthors(context.Background(), []int64{1})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListByAuthorsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", srv.Client())
	_, err := c.ListByAuthors(context.Background(), []int64{1})
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestListByAuthorsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"oops":`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", srv.Client())
	_, err := c.ListByAuthors(context.Background(), []int64{1})
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/5" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("expected bearer token")
		}
		_ = json.NewEncoder(w).Encode(Post{ID: 5, UserID: 1, Text: "hello"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", srv.Client())
	post, err := c.Get(context.Background(), "tok", 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.ID != 5 {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", srv.Client())
	_, err := c.Get(context.Background(), "tok", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
