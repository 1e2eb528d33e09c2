package bookingRepo

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

// sweepBatchSize caps how many due bookings one sweep tick loads.
const sweepBatchSize = 500

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

func activeStatusFilter() bson.M {
	return bson.M{"$in": models.ActiveBookingStatuses}
}

// CreateBooking inserts a new booking document.
func (repo *MongoBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetBooking fetches one booking scoped to its tenant.
func (repo *MongoBookingRepo) GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctx, bson.M{"tenant_id": tenantID, "id": bookingID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// ListActiveBetween returns active bookings in [from, to) for the tenant.
func (repo *MongoBookingRepo) ListActiveBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":    tenantID,
		"status":       activeStatusFilter(),
		"scheduled_at": bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	return repo.find(ctx, filter, opts)
}

// ListDueForReminder returns active, un-reminded bookings in [from, to] across tenants.
func (repo *MongoBookingRepo) ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{
		"status":        activeStatusFilter(),
		"reminder_sent": false,
		"scheduled_at":  bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetLimit(sweepBatchSize)
	return repo.find(ctx, filter, opts)
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// MarkReminderSent sets reminder_sent only if it is still false.
func (repo *MongoBookingRepo) MarkReminderSent(ctx context.Context, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{"id": bookingID, "reminder_sent": false}
	update := bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now().UTC()}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error marking reminder sent for booking %s: %w", bookingID, err)
	}
	return res.ModifiedCount == 1, nil
}

// UpdateStatus changes the booking status.
func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, tenantID, bookingID string, status models.BookingStatus) error {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	filter := bson.M{"tenant_id": tenantID, "id": bookingID}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s: %w", bookingID, repository.ErrNotFound)
	}
	return nil
}

// EnsureIndexes creates the indexes used by slot search and the reminder sweep.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Slot search: tenant + status + time.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("tenant_status_time_idx"),
		},
		// Appointment sweep.
		{
			Keys:    bson.D{{Key: "reminder_sent", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("reminder_due_idx"),
		},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
