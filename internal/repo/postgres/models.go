package postgres

import "time"

type LibraryModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Code         string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	OwnerName    string    `gorm:"not null"`
	OwnerEmail   string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (LibraryModel) TableName() string {
	return "libraries"
}

type UserModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	TenantID     string    `gorm:"type:uuid;index;not null"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Role         string    `gorm:"not null"`
	Permissions  []byte    `gorm:"type:jsonb;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

type StudentModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	TenantID       string    `gorm:"type:uuid;index;not null"`
	Name           string    `gorm:"not null"`
	RegistrationNo string    `gorm:"uniqueIndex;not null"`
	PasswordHash   string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (StudentModel) TableName() string {
	return "students"
}

type BranchModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	TenantID  string    `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	Address   string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (BranchModel) TableName() string {
	return "branches"
}
