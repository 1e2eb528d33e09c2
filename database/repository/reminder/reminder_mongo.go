package reminderRepo

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

const sweepBatchSize = 500

type mongoReminderRepo struct {
	coll *mongo.Collection
}

// NewMongoReminderRepo returns a ReminderRepository backed by the reminders collection.
func NewMongoReminderRepo(db *mongo.Database) ReminderRepository {
	return &mongoReminderRepo{coll: db.Collection("reminders")}
}

func (r *mongoReminderRepo) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, reminder); err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func (r *mongoReminderRepo) ListDue(ctx context.Context, from, to time.Time) ([]models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{
		"sent":   false,
		"due_at": bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_at", Value: 1}}).SetLimit(sweepBatchSize)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

func (r *mongoReminderRepo) MarkSent(ctx context.Context, reminderID string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{"id": reminderID, "sent": false}
	update := bson.M{"$set": bson.M{"sent": true, "sent_at": at.UTC()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder %s sent: %w", reminderID, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoReminderRepo) HasRecentFoodReminder(ctx context.Context, tenantID, subjectID, productID string, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":  tenantID,
		"kind":       models.KindFood,
		"subject_id": subjectID,
		"product_id": productID,
		"due_at":     bson.M{"$gte": since.UTC()},
	}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count food reminders: %w", err)
	}
	return count > 0, nil
}

func (r *mongoReminderRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "sent", Value: 1}, {Key: "due_at", Value: 1}},
			Options: options.Index().SetName("sent_due_idx"),
		},
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "product_id", Value: 1},
				{Key: "due_at", Value: -1},
			},
			Options: options.Index().SetName("food_dedup_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create reminder indexes: %w", err)
	}
	return nil
}
