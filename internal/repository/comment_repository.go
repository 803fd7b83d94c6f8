package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maison-mode/internal/domain"
)

// CommentRepository is an append-only, session-scoped comment store.
// Comment IDs follow the com<N+1> scheme where N is the session's current
// comment count; they are unique within a session only, never globally.
// The store does not verify that the product ID exists -- that check
// belongs to the caller.
type CommentRepository interface {
	Add(ctx context.Context, sessionID string, comment domain.Comment) domain.Comment
	ListByProduct(ctx context.Context, sessionID, productID string) []domain.Comment
	DropSession(sessionID string)
}

type commentRepository struct {
	mu       sync.RWMutex
	comments map[string][]domain.Comment
	now      func() time.Time
}

// NewCommentRepository creates an empty in-memory comment store.
func NewCommentRepository() CommentRepository {
	return &commentRepository{
		comments: make(map[string][]domain.Comment),
		now:      time.Now,
	}
}

// Add assigns the next sequence ID and today's calendar date, then appends
// the comment. The passed-in ID and date are ignored.
func (r *commentRepository) Add(_ context.Context, sessionID string, comment domain.Comment) domain.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.ID = fmt.Sprintf("com%d", len(r.comments[sessionID])+1)
	comment.Date = r.now().Format(domain.CommentDateLayout)
	r.comments[sessionID] = append(r.comments[sessionID], comment)
	return comment
}

// ListByProduct returns the session's comments for one product, in
// insertion order.
func (r *commentRepository) ListByProduct(_ context.Context, sessionID, productID string) []domain.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Comment
	for _, c := range r.comments[sessionID] {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out
}

// DropSession discards the session's comments.
func (r *commentRepository) DropSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, sessionID)
}
