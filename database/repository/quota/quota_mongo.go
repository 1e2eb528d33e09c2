package quotaRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetflow/database/repository"
	"vetflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoQuotaRepo struct {
	coll *mongo.Collection
}

// NewMongoQuotaRepo returns a QuotaRepository backed by the quota_periods collection.
func NewMongoQuotaRepo(db *mongo.Database) QuotaRepository {
	return &mongoQuotaRepo{coll: db.Collection("quota_periods")}
}

func (r *mongoQuotaRepo) GetPeriod(ctx context.Context, tenantID string) (*models.QuotaPeriod, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	var period models.QuotaPeriod
	err := r.coll.FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&period)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("quota period for tenant %s: %w", tenantID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quota period: %w", err)
	}
	return &period, nil
}

func (r *mongoQuotaRepo) UpsertPeriod(ctx context.Context, period *models.QuotaPeriod) error {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"tenant_id": period.TenantID}, period, opts); err != nil {
		return fmt.Errorf("failed to upsert quota period: %w", err)
	}
	return nil
}

func (r *mongoQuotaRepo) IncrementMetered(ctx context.Context, tenantID string) (bool, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"$expr":     bson.M{"$lt": bson.A{"$metered_used", "$metered_limit"}},
	}
	return r.guardedUpdate(ctx, filter, bson.M{
		"$inc": bson.M{"metered_used": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoQuotaRepo) DecrementTopup(ctx context.Context, tenantID string) (bool, error) {
	filter := bson.M{"tenant_id": tenantID, "topup_balance": bson.M{"$gt": 0}}
	return r.guardedUpdate(ctx, filter, bson.M{
		"$inc": bson.M{"topup_balance": -1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoQuotaRepo) AddTopup(ctx context.Context, tenantID string, count int) (bool, error) {
	return r.guardedUpdate(ctx, bson.M{"tenant_id": tenantID}, bson.M{
		"$inc": bson.M{"topup_balance": count},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoQuotaRepo) ResetPeriod(ctx context.Context, tenantID string, start, end time.Time) (bool, error) {
	return r.guardedUpdate(ctx, bson.M{"tenant_id": tenantID}, bson.M{
		"$set": bson.M{
			"metered_used": 0,
			"period_start": start.UTC(),
			"period_end":   end.UTC(),
			"updated_at":   time.Now().UTC(),
		},
	})
}

func (r *mongoQuotaRepo) guardedUpdate(ctx context.Context, filter, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update quota period: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoQuotaRepo) ListExpired(ctx context.Context, now time.Time) ([]models.QuotaPeriod, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"period_end": bson.M{"$lte": now.UTC()}})
	if err != nil {
		return nil, fmt.Errorf("failed to query expired quota periods: %w", err)
	}
	defer cursor.Close(ctx)

	var periods []models.QuotaPeriod
	if err := cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("failed to decode quota periods: %w", err)
	}
	return periods, nil
}

func (r *mongoQuotaRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_tenant"),
		},
		{
			Keys:    bson.D{{Key: "period_end", Value: 1}},
			Options: options.Index().SetName("period_end_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create quota indexes: %w", err)
	}
	return nil
}
