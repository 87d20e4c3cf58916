package models

type Tenant struct {
	Base
	CompanyName      string `gorm:"not null" json:"company_name"`
	Subdomain        string `gorm:"uniqueIndex;not null" json:"subdomain"` // lowercase slug, e.g. "acme"
	ContactEmail     string `gorm:"not null" json:"contact_email"`
	ContactPhone     string `json:"contact_phone,omitempty"`
	Address          string `json:"address,omitempty"`
	SubscriptionPlan string `gorm:"default:'free'" json:"subscription_plan"` // free, pro, enterprise
	IsActive         bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Users    []User    `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
	Projects []Project `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}
