package directoryRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"vetflow/database/repository"
	"vetflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// phoneMatchDigits is how many trailing digits identify a phone number.
const phoneMatchDigits = 10

type mongoDirectoryRepo struct {
	contacts *mongo.Collection
	subjects *mongo.Collection
	products *mongo.Collection
	settings *mongo.Collection
}

func NewMongoDirectoryRepo(db *mongo.Database) DirectoryRepository {
	return &mongoDirectoryRepo{
		contacts: db.Collection("contacts"),
		subjects: db.Collection("subjects"),
		products: db.Collection("products"),
		settings: db.Collection("tenant_configs"),
	}
}

// PhoneSuffix strips non-digits and keeps the trailing digits used for matching.
func PhoneSuffix(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneMatchDigits {
		digits = digits[len(digits)-phoneMatchDigits:]
	}
	return digits
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, what string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.OpTimeout)
	defer cancel()

	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", what, err)
	}
	return &out, nil
}

func (r *mongoDirectoryRepo) GetContact(ctx context.Context, tenantID, contactID string) (*models.Contact, error) {
	return findOne[models.Contact](ctx, r.contacts, bson.M{"tenant_id": tenantID, "id": contactID}, "contact "+contactID)
}

func (r *mongoDirectoryRepo) FindContactByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	suffix := PhoneSuffix(phone)
	if suffix == "" {
		return nil, fmt.Errorf("contact with empty phone: %w", repository.ErrNotFound)
	}
	filter := bson.M{"phone": primitive.Regex{Pattern: regexp.QuoteMeta(suffix) + "$"}}
	return findOne[models.Contact](ctx, r.contacts, filter, "contact by phone")
}

func (r *mongoDirectoryRepo) GetSubject(ctx context.Context, tenantID, subjectID string) (*models.Subject, error) {
	return findOne[models.Subject](ctx, r.subjects, bson.M{"tenant_id": tenantID, "id": subjectID}, "subject "+subjectID)
}

func (r *mongoDirectoryRepo) FirstSubjectForContact(ctx context.Context, tenantID, contactID string) (*models.Subject, error) {
	return findOne[models.Subject](ctx, r.subjects, bson.M{"tenant_id": tenantID, "contact_id": contactID}, "subject for contact "+contactID)
}

func (r *mongoDirectoryRepo) GetProduct(ctx context.Context, tenantID, productID string) (*models.Product, error) {
	return findOne[models.Product](ctx, r.products, bson.M{"tenant_id": tenantID, "id": productID}, "product "+productID)
}

func (r *mongoDirectoryRepo) GetTenantConfig(ctx context.Context, tenantID string) (*models.TenantConfig, error) {
	return findOne[models.TenantConfig](ctx, r.settings, bson.M{"tenant_id": tenantID}, "tenant config "+tenantID)
}

func (r *mongoDirectoryRepo) AnyTenantConfig(ctx context.Context) (*models.TenantConfig, error) {
	return findOne[models.TenantConfig](ctx, r.settings, bson.M{}, "tenant config")
}

// EnsureIndexes covers the tenant-scoped lookups and the inbound phone match.
func (r *mongoDirectoryRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	byTenantID := mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetName("tenant_id_idx"),
	}
	plan := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{r.contacts, []mongo.IndexModel{
			byTenantID,
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetName("phone_idx")},
		}},
		{r.subjects, []mongo.IndexModel{
			byTenantID,
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "contact_id", Value: 1}}, Options: options.Index().SetName("tenant_contact_idx")},
		}},
		{r.products, []mongo.IndexModel{byTenantID}},
		{r.settings, []mongo.IndexModel{
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_tenant")},
		}},
	}
	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", p.coll.Name(), err)
		}
	}
	return nil
}
