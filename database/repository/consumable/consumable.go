package consumableRepo

import (
	"context"
	"fmt"

	"vetflow/database/repository"
	"vetflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConsumableRepository reads consumption tracking rows. The engine never writes them.
type ConsumableRepository interface {
	ListAutoRemind(ctx context.Context) ([]models.ConsumableUsage, error)
}

type mongoConsumableRepo struct {
	coll *mongo.Collection
}

func NewMongoConsumableRepo(db *mongo.Database) ConsumableRepository {
	return &mongoConsumableRepo{coll: db.Collection("consumable_usage")}
}

// ListAutoRemind returns every usage row with auto_remind enabled.
func (r *mongoConsumableRepo) ListAutoRemind(ctx context.Context) ([]models.ConsumableUsage, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"auto_remind": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query consumable usage: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []models.ConsumableUsage
	if err := cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode consumable usage: %w", err)
	}
	return usages, nil
}
