package models

import "time"

// Contact is a registered customer of a tenant.
type Contact struct {
	ID       string `bson:"id" json:"id"`
	TenantID string `bson:"tenant_id" json:"tenantId"`
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone" json:"phone"`
	// DeviceToken is used by the push delivery channel.
	DeviceToken string `bson:"device_token,omitempty" json:"deviceToken,omitempty"`
}

// Subject is the animal an appointment or reminder is about.
type Subject struct {
	ID        string `bson:"id" json:"id"`
	TenantID  string `bson:"tenant_id" json:"tenantId"`
	ContactID string `bson:"contact_id" json:"contactId"`
	Name      string `bson:"name" json:"name"`
	Species   string `bson:"species" json:"species"`
}

type Product struct {
	ID       string `bson:"id" json:"id"`
	TenantID string `bson:"tenant_id" json:"tenantId"`
	Name     string `bson:"name" json:"name"`
	Unit     string `bson:"unit" json:"unit"`
}

// Message tone options for generated text.
const (
	ToneFriendly     = "friendly"
	ToneProfessional = "professional"
	ToneCasual       = "casual"
)

// TenantConfig holds the per-clinic settings the engine reads.
type TenantConfig struct {
	TenantID           string    `bson:"tenant_id" json:"tenantId"`
	ClinicName         string    `bson:"clinic_name" json:"clinicName"`
	Tone               string    `bson:"tone" json:"tone"`
	Language           string    `bson:"language" json:"language"`
	Timezone           string    `bson:"timezone" json:"timezone"`
	WorkingHoursText   string    `bson:"working_hours_text" json:"workingHoursText"`
	Services           string    `bson:"services" json:"services"`
	CustomInstructions string    `bson:"custom_instructions" json:"customInstructions"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updatedAt"`
}

// DefaultTenantConfig is used when a tenant has not saved any settings.
func DefaultTenantConfig(tenantID string) TenantConfig {
	return TenantConfig{
		TenantID:   tenantID,
		ClinicName: "VetFlow Clinic",
		Tone:       ToneFriendly,
		Language:   "en",
		Timezone:   "UTC",
	}
}

// Location resolves the tenant timezone, falling back to UTC.
func (c TenantConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
