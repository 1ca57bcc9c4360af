package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/IvaVarya/SERVER/internal/posts"
)

var (
	ErrInvalidPage = errors.New("page and per_page must be positive")
	ErrPostFetch   = errors.New("post fetch failed")
)

// FriendSource yields the caller's friend ids. Any error degrades the feed
// to self-only rather than failing it.
type FriendSource interface {
	FriendIDs(ctx context.Context, token string) ([]int64, error)
}

// PostSource yields posts for a set of authors. Errors here are fatal: once
// the author set is known there is no meaningful degraded answer.
type PostSource interface {
	ListByAuthors(ctx context.Context, authorIDs []int64) ([]posts.Post, error)
}

// Page is one slice of the derived feed. It is computed per request and
// never persisted.
type Page struct {
	Items   []posts.Post `json:"items"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

type Service struct {
	friends FriendSource
	posts   PostSource
}

func NewService(friends FriendSource, postStore PostSource) *Service {
	return &Service{friends: friends, posts: postStore}
}

// GetFeed assembles the paginated feed for callerID: the caller's posts plus
// their accepted friends', newest first.
func (s *Service) GetFeed(ctx context.Context, token string, callerID int64, page, perPage int) (Page, error) {
	if page < 1 || perPage < 1 {
		return Page{}, ErrInvalidPage
	}

	result := Page{Items: []posts.Post{}, Page: page, PerPage: perPage}

	authors := s.resolveAuthors(ctx, token, callerID)
	if len(authors) == 0 {
		return result, nil
	}

	items, err := s.posts.ListByAuthors(ctx, authors)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrPostFetch, err)
	}

	items = sortPosts(items)
	result.Total = len(items)

	start := (page - 1) * perPage
	if start < len(items) {
		end := start + perPage
		if end > len(items) {
			end = len(items)
		}
		result.Items = items[start:end]
	}
	return result, nil
}

// resolveAuthors returns the eligible author set: friends plus the caller.
// A failure reaching the friend service logs and degrades to the caller
// alone instead of failing the whole feed.
func (s *Service) resolveAuthors(ctx context.Context, token string, callerID int64) []int64 {
	var authors []int64
	seen := map[int64]struct{}{}
	add := func(id int64) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		authors = append(authors, id)
	}

	ids, err := s.friends.FriendIDs(ctx, token)
	if err != nil {
		log.Printf("friend list fetch failed, serving self-only feed for user %d: %v", callerID, err)
	} else {
		for _, id := range ids {
			add(id)
		}
	}
	add(callerID)
	return authors
}

// sortPosts orders newest first; equal timestamps keep ascending id order so
// repeated assemblies are deterministic.
func sortPosts(items []posts.Post) []posts.Post {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}
