package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"firstName"`
	LastName     string    `gorm:"size:100;not null" json:"lastName"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Faculty      string    `gorm:"size:150;not null;index" json:"faculty"`
	Department   string    `gorm:"size:150;not null;index" json:"department"`
	PhoneNumber  string    `gorm:"size:30" json:"phoneNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName is the name shown next to listings and messages.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// ProfileUpdate carries the optional fields of a partial profile update.
// A nil pointer means the field was not supplied.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Faculty     *string
	Department  *string
	PhoneNumber *string
}

// IsEmpty reports whether no field was supplied.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Faculty == nil &&
		p.Department == nil && p.PhoneNumber == nil
}
