package directoryRepo

import (
	"context"

	"vetflow/models"
)

// DirectoryRepository resolves the entities joined into outgoing messages.
// All lookups return repository.ErrNotFound (wrapped) on a miss.
type DirectoryRepository interface {
	GetContact(ctx context.Context, tenantID, contactID string) (*models.Contact, error)
	// FindContactByPhone matches on the last ten digits of phone across tenants.
	FindContactByPhone(ctx context.Context, phone string) (*models.Contact, error)
	GetSubject(ctx context.Context, tenantID, subjectID string) (*models.Subject, error)
	FirstSubjectForContact(ctx context.Context, tenantID, contactID string) (*models.Subject, error)
	GetProduct(ctx context.Context, tenantID, productID string) (*models.Product, error)
	GetTenantConfig(ctx context.Context, tenantID string) (*models.TenantConfig, error)
	// AnyTenantConfig is used to attribute messages from unknown numbers.
	AnyTenantConfig(ctx context.Context) (*models.TenantConfig, error)
	EnsureIndexes(ctx context.Context) error
}
