package entities

import "time"

// Provider is a persisted model provider endpoint. APIKey holds the
// AES-GCM encrypted credential, never plaintext.
type Provider struct {
	ID              uint    `gorm:"primaryKey"`
	PublicID        string  `gorm:"size:64;uniqueIndex;not null"`
	Name            string  `gorm:"size:255;not null"`
	BaseURL         string  `gorm:"size:1024;not null"`
	EncryptedAPIKey string  `gorm:"type:text"`
	APIKeyHint      *string `gorm:"size:16"`
	LastSyncedAt    *time.Time
	Models          []Model `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Model is a persisted model registration under a provider.
type Model struct {
	ID          uint   `gorm:"primaryKey"`
	PublicID    string `gorm:"size:64;uniqueIndex;not null"`
	ProviderID  uint   `gorm:"index;not null;uniqueIndex:idx_provider_model"`
	ModelID     string `gorm:"size:255;not null;uniqueIndex:idx_provider_model"`
	DisplayName string `gorm:"size:255"`
	Reasoning   bool   `gorm:"default:false"`
	Enabled     bool   `gorm:"default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
