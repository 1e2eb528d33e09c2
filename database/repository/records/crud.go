package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"vetflow/database/repository"
	"vetflow/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new health record and returns its ID.
func (r *mongoRecordRepo) Create(ctx context.Context, record models.HealthRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return "", fmt.Errorf("failed to insert health record: %w", err)
	}
	return record.ID, nil
}

// GetBySubjectID fetches a subject's records, newest first.
func (r *mongoRecordRepo) GetBySubjectID(ctx context.Context, tenantID, subjectID string) ([]models.HealthRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"tenant_id": tenantID, "subject_id": subjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query health records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.HealthRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
