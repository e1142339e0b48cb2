package models

import (
	"errors"
	"fmt"
	"scrapbook/db"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPassword = errors.New("invalid password")

type User struct {
	ID          uint64 `gorm:"primaryKey"`
	CreatedAt   int64
	UpdatedAt   int64
	CreatedByID *uint64
	CreatedBy   *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name        string  `gorm:"type:varchar(100)"`
	Email       string  `gorm:"type:varchar(150);index:uniq_email,unique"`
	Password    string  `gorm:"type:varchar(72)"` // bcrypt hash
	Grants      []Grant `gorm:"foreignKey:UserID"`
}

// UserCreate stores a new user with the given permissions
func UserCreate(name, email, plainTextPassword string, permissions ...Permission) (u User, err error) {
	u.Email = email
	u.Name = name
	if err = u.SetPassword(plainTextPassword); err != nil {
		return
	}
	for _, p := range permissions {
		u.Grants = append(u.Grants, Grant{Permission: p})
	}
	return u, db.Instance.Create(&u).Error
}

// SetPassword hashes the password, bcrypt accepts at most 72 bytes
func (u *User) SetPassword(plainTextPassword string) error {
	if plainTextPassword == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}
	u.Password = string(hash)
	return nil
}

func UserLogin(email, plainTextPassword string) (u User, success bool) {
	result := db.Instance.Preload("Grants").First(&u, "email = ?", email)
	if result.Error != nil {
		return User{}, false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plainTextPassword))
	if err != nil {
		return User{}, false
	}
	return u, true
}

// UserLoad returns the user with its grants, ID is 0 if not found
func UserLoad(id uint64) (u User) {
	if db.Instance.Preload("Grants").First(&u, id).Error != nil {
		return User{}
	}
	return
}

func (u *User) GetPermissions() []int {
	permissions := []int{}
	for _, grant := range u.Grants {
		permissions = append(permissions, int(grant.Permission))
	}
	return permissions
}

func (u *User) HasPermission(required Permission) bool {
	for _, permission := range u.Grants {
		if permission.Permission == required || permission.Permission == PermissionAdmin {
			return true
		}
	}
	return false
}

func (u *User) HasPermissions(required []Permission) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}

// SetPermissions replaces all grants of the user
func (u *User) SetPermissions(grantorID uint64, permissions []Permission) error {
	if err := db.Instance.Where("user_id = ?", u.ID).Delete(&Grant{}).Error; err != nil {
		return err
	}
	u.Grants = nil
	for _, p := range permissions {
		g := Grant{UserID: u.ID, Permission: p}
		if grantorID > 0 {
			g.GrantorID = &grantorID
		}
		u.Grants = append(u.Grants, g)
	}
	if len(u.Grants) == 0 {
		return nil
	}
	return db.Instance.Create(&u.Grants).Error
}
