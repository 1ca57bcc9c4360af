package friendship

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/IvaVarya/SERVER/internal/db"
	"github.com/IvaVarya/SERVER/internal/directory"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSelfRequest     = errors.New("cannot add yourself as a friend")
	ErrAlreadyExists   = errors.New("friend request or friendship already exists")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrFriendNotFound  = errors.New("friend not found")
	ErrUserNotFound    = errors.New("user does not exist")
)

const maxSearchResults = 10

// Directory is the user-directory collaborator used to verify that peers
// exist and to decorate list items with profile fields.
type Directory interface {
	Resolve(ctx context.Context, token string, userID int64) (directory.Profile, error)
	Search(ctx context.Context, token, query string, excludeID int64, limit int) ([]directory.Profile, error)
}

type Service struct {
	db  db.TxQuerier
	dir Directory
}

func NewService(db db.TxQuerier, dir Directory) *Service {
	return &Service{db: db, dir: dir}
}

// RequestFriend creates a pending edge from userID to friendID and returns
// its id. The peer must exist; a transient directory failure is surfaced as
// unavailable, never as "user does not exist".
func (s *Service) RequestFriend(ctx context.Context, token string, userID, friendID int64) (int64, error) {
	if userID == friendID {
		return 0, ErrSelfRequest
	}
	if err := s.checkUserExists(ctx, token, friendID); err != nil {
		return 0, err
	}

	var count int64
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM friendships
		WHERE (user_id = $1 AND friend_id = $2)
		   OR (user_id = $2 AND friend_id = $1 AND status = 'pending')
	`, userID, friendID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("check existing friendship: %w", err)
	}
	if count > 0 {
		return 0, ErrAlreadyExists
	}

	var id int64
	row = s.db.QueryRow(ctx, `
		INSERT INTO friendships (user_id, friend_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id
	`, userID, friendID)
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("create friend request: %w", err)
	}
	return id, nil
}

// AcceptFriend consumes the pending edge (friendID -> userID) and inserts the
// reciprocal accepted edge in the same transaction. The conditional UPDATE is
// the race guard: a second concurrent accept matches zero rows.
func (s *Service) AcceptFriend(ctx context.Context, token string, userID, friendID int64) error {
	if err := s.checkUserExists(ctx, token, friendID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin accept: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE friendships SET status = 'accepted'
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
	`, friendID, userID)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, status)
		VALUES ($1, $2, 'accepted')
	`, userID, friendID); err != nil {
		return fmt.Errorf("create reciprocal friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit accept: %w", err)
	}
	return nil
}

// RejectFriend deletes the pending edge (friendID -> userID).
func (s *Service) RejectFriend(ctx context.Context, userID, friendID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM friendships
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
	`, friendID, userID)
	if err != nil {
		return fmt.Errorf("reject friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// RemoveFriend deletes both directional edges. A missing reciprocal edge is
// logged and healed, not failed.
func (s *Service) RemoveFriend(ctx context.Context, token string, userID, friendID int64) error {
	if err := s.checkUserExists(ctx, token, friendID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM friendships
		WHERE user_id = $1 AND friend_id = $2 AND status = 'accepted'
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendNotFound
	}

	tag, err = tx.Exec(ctx, `
		DELETE FROM friendships
		WHERE user_id = $1 AND friend_id = $2 AND status = 'accepted'
	`, friendID, userID)
	if err != nil {
		return fmt.Errorf("delete reciprocal friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("missing reciprocal friendship edge %d->%d, healing", friendID, userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}
	return nil
}

// ListFriends returns the accepted edges owned by userID, decorated with
// profile fields. An edge whose peer cannot be resolved is skipped so one
// bad lookup does not blank the whole list.
func (s *Service) ListFriends(ctx context.Context, token string, userID int64) ([]Friend, error) {
	edges, err := s.listEdges(ctx, `
		SELECT friend_id, created_at FROM friendships
		WHERE user_id = $1 AND status = 'accepted'
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return s.decorate(ctx, token, edges), nil
}

// ListIncomingRequests returns the pending edges addressed to userID,
// decorated with the requester's profile.
func (s *Service) ListIncomingRequests(ctx context.Context, token string, userID int64) ([]Friend, error) {
	edges, err := s.listEdges(ctx, `
		SELECT user_id, created_at FROM friendships
		WHERE friend_id = $1 AND status = 'pending'
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return s.decorate(ctx, token, edges), nil
}

// SearchUsers delegates to the directory, excluding the caller and capping
// the result set.
func (s *Service) SearchUsers(ctx context.Context, token string, userID int64, query string) ([]directory.Profile, error) {
	return s.dir.Search(ctx, token, query, userID, maxSearchResults)
}

type edge struct {
	peerID    int64
	createdAt time.Time
}

func (s *Service) listEdges(ctx context.Context, sql string, userID int64) ([]edge, error) {
	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []edge
	for rows.Next() {
		var e edge
		if err := rows.Scan(&e.peerID, &e.createdAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *Service) decorate(ctx context.Context, token string, edges []edge) []Friend {
	friends := make([]Friend, 0, len(edges))
	for _, e := range edges {
		profile, err := s.dir.Resolve(ctx, token, e.peerID)
		if err != nil {
			log.Printf("skipping friend %d: %v", e.peerID, err)
			continue
		}
		friends = append(friends, Friend{
			FriendID:  e.peerID,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Login:     profile.Login,
			CreatedAt: e.createdAt,
		})
	}
	return friends
}

func (s *Service) checkUserExists(ctx context.Context, token string, userID int64) error {
	if _, err := s.dir.Resolve(ctx, token, userID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
