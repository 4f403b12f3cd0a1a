package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adminconsole/dashboard/internal/core/domain"
	"github.com/adminconsole/dashboard/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

// EnsureIndexes creates the lookup indexes of the audit collection.
// Creating an existing index is a no-op.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(auditCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "at", Value: 1}},
			Options: options.Index().SetName("session_at"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("username_at").SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

// InsertAudit persists an audit event to the audit_events collection.
func (r *AuditRepository) InsertAudit(ctx context.Context, event *domain.AuditEvent) error {
	doc := bson.M{
		"session_id":  event.SessionID,
		"action":      string(event.Action),
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Username != "" {
		doc["username"] = event.Username
	}
	if event.Path != "" {
		doc["path"] = event.Path
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	_, err := r.db.Collection(auditCollection).InsertOne(ctx, doc)
	return err
}
