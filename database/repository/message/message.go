package messageRepo

import (
	"context"
	"fmt"
	"time"

	"vetflow/database/repository"
	"vetflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository is the inbound/outbound message journal.
type MessageRepository interface {
	InsertMessage(ctx context.Context, msg *models.MessageLog) error
	// UpdateStatusByExternalID applies a delivery receipt from the provider.
	UpdateStatusByExternalID(ctx context.Context, externalID, status string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoMessageRepo struct {
	coll *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	return &mongoMessageRepo{coll: db.Collection("messages")}
}

func (r *mongoMessageRepo) InsertMessage(ctx context.Context, msg *models.MessageLog) error {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to journal message: %w", err)
	}
	return nil
}

func (r *mongoMessageRepo) UpdateStatusByExternalID(ctx context.Context, externalID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"external_id": externalID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", externalID, repository.ErrNotFound)
	}
	return nil
}

func (r *mongoMessageRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("external_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("tenant_created_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}
