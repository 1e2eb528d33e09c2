package recordsRepo

import (
	"context"

	"vetflow/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type HealthRecordRepository interface {
	Create(ctx context.Context, record models.HealthRecord) (string, error)
	GetBySubjectID(ctx context.Context, tenantID, subjectID string) ([]models.HealthRecord, error)
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a new HealthRecordRepository instance using MongoDB.
func NewMongoRecordRepo(db *mongo.Database) HealthRecordRepository {
	return &mongoRecordRepo{
		coll: db.Collection("health_records"),
	}
}
