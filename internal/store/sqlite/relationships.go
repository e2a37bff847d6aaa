package sqlite

import (
	"context"
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

const relationshipColumns = `id, parent_id, child_id, kind, iteration, created_at, metadata`

// CreateRelationship inserts a directed edge between two workers. Returns
// KindRelationshipExists if the same (parent, child, kind, iteration) tuple
// already exists (spec.md §3 uniqueness invariant).
func (s *Store) CreateRelationship(ctx context.Context, r *store.Relationship) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.execContext(ctx, `
		INSERT INTO relationships (parent_id, child_id, kind, iteration, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ParentID, r.ChildID, string(r.Kind), r.Iteration, createdAt.Unix(), r.Metadata,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return swarmerr.New(swarmerr.KindRelationshipExists, "store", "relationship already exists").
				WithDetail("parent_id", r.ParentID).WithDetail("child_id", r.ChildID)
		}
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "insert relationship failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "relationship last insert id failed", err)
	}
	r.ID = id
	r.CreatedAt = createdAt
	return nil
}

// UpdateRelationshipMetadata overwrites the opaque metadata column of the
// relationship with the given id (spec.md §4.5.4: request_changes and
// create_pull_request record the review decision on the spawned_review
// edge after it was created).
func (s *Store) UpdateRelationshipMetadata(ctx context.Context, id int64, metadata string) error {
	res, err := s.execContext(ctx, `UPDATE relationships SET metadata = ? WHERE id = ?`, metadata, id)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "update relationship metadata failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "update relationship metadata rows affected failed", err)
	}
	if n == 0 {
		return swarmerr.New(swarmerr.KindStoreNotFound, "store", "relationship not found").WithDetail("id", id)
	}
	return nil
}

// GetRelationships returns every relationship where workerID is either the
// parent or the child, ordered by creation time.
func (s *Store) GetRelationships(ctx context.Context, workerID string) ([]*store.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+relationshipColumns+` FROM relationships
		WHERE parent_id = ? OR child_id = ?
		ORDER BY created_at ASC`, workerID, workerID)
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "list relationships failed", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*store.Relationship
	for rows.Next() {
		var rel store.Relationship
		var kind string
		var createdAt int64
		var metadata *string
		if err := rows.Scan(&rel.ID, &rel.ParentID, &rel.ChildID, &kind, &rel.Iteration, &createdAt, &metadata); err != nil {
			return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "scan relationship row failed", err)
		}
		rel.Kind = store.RelationshipKind(kind)
		rel.CreatedAt = time.Unix(createdAt, 0).UTC()
		if metadata != nil {
			rel.Metadata = *metadata
		}
		out = append(out, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "iterate relationship rows failed", err)
	}
	return out, nil
}
