package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IvaVarya/SERVER/internal/posts"
)

type fakeFriends struct {
	ids []int64
	err error
}

func (f *fakeFriends) FriendIDs(context.Context, string) ([]int64, error) {
	return f.ids, f.err
}

type fakePosts struct {
	items      []posts.Post
	err        error
	calls      int
	gotAuthors []int64
}

func (f *fakePosts) ListByAuthors(_ context.Context, authorIDs []int64) ([]posts.Post, error) {
	f.calls++
	f.gotAuthors = authorIDs
	if f.err != nil {
		return nil, f.err
	}
	var matched []posts.Post
	for _, p := range f.items {
		for _, id := range authorIDs {
			if p.UserID == id {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched, nil
}

func makePosts(n int, userID int64) []posts.Post {
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	items := make([]posts.Post, n)
	for i := range items {
		items[i] = posts.Post{
			ID:        int64(i + 1),
			UserID:    userID,
			Text:      fmt.Sprintf("post %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return items
}

func TestGetFeedInvalidPage(t *testing.T) {
	svc := NewService(&fakeFriends{}, &fakePosts{})

	for _, tc := range []struct{ page, perPage int }{
		{0, 10},
		{-1, 10},
		{1, 0},
		{1, -5},
	} {
		_, err := svc.GetFeed(context.Background(), "tok", 1, tc.page, tc.perPage)
		if !errors.Is(err, ErrInvalidPage) {
			t.Fatalf("page=%d per_page=%d: expected ErrInvalidPage, got %v", tc.page, tc.perPage, err)
		}
	}
}

func TestGetFeedMergesFriendsAndSelf(t *testing.T) {
	store := &fakePosts{items: append(makePosts(2, 2), posts.Post{
		ID: 99, UserID: 1, Text: "mine",
		CreatedAt: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})}
	svc := NewService(&fakeFriends{ids: []int64{2, 3}}, store)

	page, err := svc.GetFeed(context.Background(), "tok", 1, 1, 10)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if len(store.gotAuthors) != 3 {
		t.Fatalf("expected authors [2 3 1], got %v", store.gotAuthors)
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
	if page.Items[0].ID != 99 {
		t.Fatalf("expected newest post first, got id %d", page.Items[0].ID)
	}
}

func TestGetFeedDegradesToSelf(t *testing.T) {
	store := &fakePosts{items: makePosts(3, 1)}
	svc := NewService(&fakeFriends{err: errors.New("friend service down")}, store)

	page, err := svc.GetFeed(context.Background(), "tok", 1, 1, 10)
	if err != nil {
		t.Fatalf("friend failure must degrade, not fail: %v", err)
	}
	if len(store.gotAuthors) != 1 || store.gotAuthors[0] != 1 {
		t.Fatalf("expected self-only author set, got %v", store.gotAuthors)
	}
	if page.Total != 3 {
		t.Fatalf("expected caller's own posts to survive, got total %d", page.Total)
	}
}

func TestGetFeedPostFetchFatal(t *testing.T) {
	svc := NewService(&fakeFriends{ids: []int64{2}}, &fakePosts{err: errors.New("post service down")})

	if _, err := svc.GetFeed(context.Background(), "tok", 1, 1, 10); !errors.Is(err, ErrPostFetch) {
		t.Fatalf("expected ErrPostFetch, got %v", err)
	}
}

func TestGetFeedEmptyAuthorSet(t *testing.T) {
	store := &fakePosts{}
	svc := NewService(&fakeFriends{err: errors.New("down")}, store)

	page, err := svc.GetFeed(context.Background(), "tok", 0, 1, 10)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no post fetch for an empty author set")
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
	if page.Items == nil {
		t.Fatalf("items must serialize as an empty list, not null")
	}
}

func TestGetFeedDedupesAuthors(t *testing.T) {
	store := &fakePosts{}
	svc := NewService(&fakeFriends{ids: []int64{2, 2, 1, 0}}, store)

	if _, err := svc.GetFeed(context.Background(), "tok", 1, 1, 10); err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if len(store.gotAuthors) != 2 {
		t.Fatalf("expected deduped authors [2 1], got %v", store.gotAuthors)
	}
}

func TestGetFeedPagination(t *testing.T) {
	store := &fakePosts{items: makePosts(15, 1)}
	svc := NewService(&fakeFriends{}, store)

	first, err := svc.GetFeed(context.Background(), "tok", 1, 1, 10)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Items) != 10 || first.Total != 15 {
		t.Fatalf("page 1: expected 10 of 15, got %d of %d", len(first.Items), first.Total)
	}

	second, err := svc.GetFeed(context.Background(), "tok", 1, 2, 10)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(second.Items) != 5 || second.Total != 15 {
		t.Fatalf("page 2: expected 5 of 15, got %d of %d", len(second.Items), second.Total)
	}

	third, err := svc.GetFeed(context.Background(), "tok", 1, 3, 10)
	if err != nil {
		t.Fatalf("page past the end must not error: %v", err)
	}
	if len(third.Items) != 0 || third.Total != 15 {
		t.Fatalf("page 3: expected empty slice with total 15, got %d of %d", len(third.Items), third.Total)
	}
}

func TestSortPostsDeterministic(t *testing.T) {
	at := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	items := []posts.Post{
		{ID: 3, CreatedAt: at},
		{ID: 1, CreatedAt: at},
		{ID: 2, CreatedAt: at.Add(time.Hour)},
	}

	sorted := sortPosts(items)
	if sorted[0].ID != 2 {
		t.Fatalf("expected newest post first, got id %d", sorted[0].ID)
	}
	if sorted[1].ID != 1 || sorted[2].ID != 3 {
		t.Fatalf("expected equal timestamps ordered by ascending id, got %d then %d", sorted[1].ID, sorted[2].ID)
	}
}
