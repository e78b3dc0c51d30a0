package models

import (
	"time"

	"servicehub/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Accounts
// ============================================================

// User represents the auth table
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;index" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "auth"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts a user to its public shape; an unset role is rendered as null.
func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if u.Role != "" {
		role := u.Role
		resp.Role = &role
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Providers
// ============================================================

// Provider represents the providers table. One record per account.
type Provider struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name         string    `gorm:"size:100" json:"name"`
	Service      string    `gorm:"size:100;index" json:"service"`
	Contact      string    `gorm:"size:100" json:"contact"`
	Location     string    `gorm:"size:100" json:"location"`
	Experience   string    `gorm:"size:100" json:"experience"`
	Availability string    `gorm:"size:100" json:"availability"`
	Rate         string    `gorm:"size:50" json:"rate"`
	Photo        string    `gorm:"size:255" json:"photo"`
	Status       string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Version      uint      `gorm:"not null;default:1" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Provider) TableName() string {
	return "providers"
}

// ApplyFields copies profile fields onto the record
func (p *Provider) ApplyFields(f domain.ProviderFields) {
	p.Name = f.Name
	p.Service = f.Service
	p.Contact = f.Contact
	p.Location = f.Location
	p.Experience = f.Experience
	p.Availability = f.Availability
	p.Rate = f.Rate
}

// ProviderResponse DTO. Photo is a resolved URL, or null when no photo was uploaded.
type ProviderResponse struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	Name         string    `json:"name"`
	Service      string    `json:"service"`
	Contact      string    `json:"contact"`
	Location     string    `json:"location"`
	Experience   string    `json:"experience"`
	Availability string    `json:"availability"`
	Rate         string    `json:"rate"`
	Photo        *string   `json:"photo"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts a provider using resolve to turn the photo filename into a URL
func (p *Provider) ToResponse(resolve func(string) string) *ProviderResponse {
	resp := &ProviderResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Service:      p.Service,
		Contact:      p.Contact,
		Location:     p.Location,
		Experience:   p.Experience,
		Availability: p.Availability,
		Rate:         p.Rate,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
	}
	if p.Photo != "" && resolve != nil {
		url := resolve(p.Photo)
		resp.Photo = &url
	}
	return resp
}

// ModerationEvent records an admin status change on a provider
type ModerationEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProviderID uint      `gorm:"index;not null" json:"provider_id"`
	AdminID    uint      `gorm:"index" json:"admin_id"`
	FromStatus string    `gorm:"size:20" json:"from_status"`
	ToStatus   string    `gorm:"size:20;not null" json:"to_status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ModerationEvent) TableName() string {
	return "moderation_events"
}

// ============================================================
// Feedback
// ============================================================

// Review represents the reviews table. Username is a snapshot taken at write time.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Username  string    `gorm:"size:50" json:"username"`
	Rating    int       `gorm:"not null" json:"rating"`
	Text      string    `gorm:"column:review;type:text;not null" json:"review"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// Complaint represents the complaints table
type Complaint struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	ProviderID uint      `gorm:"index;not null" json:"provider_id"`
	Text       string    `gorm:"column:complaint;type:text;not null" json:"complaint"`
	Status     string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Complaint) TableName() string {
	return "complaints"
}

// ComplaintView is the admin listing row with denormalized names
type ComplaintView struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	ProviderID   uint      `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	Complaint    string    `json:"complaint"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// AutoMigrate runs auto migration for every table the service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Provider{},
		&ModerationEvent{},
		&Review{},
		&Complaint{},
	)
}
