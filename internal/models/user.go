package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PermAddGroups lets a user create, edit and delete groups.
const PermAddGroups = "posts.add_groups"

type User struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Username    string           `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       string           `json:"email" gorm:"size:254;index"`
	FirstName   string           `json:"first_name" gorm:"size:150"`
	LastName    string           `json:"last_name" gorm:"size:150"`
	Password    string           `json:"-" gorm:"not null"` // bcrypt hash
	IsSuperuser bool             `json:"is_superuser" gorm:"default:false"`
	FirebaseUID *string          `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	Permissions []UserPermission `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	DateJoined  time.Time        `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// UserPermission grants a single permission codename to a user.
type UserPermission struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_user_permission"`
	Codename string `gorm:"size:100;not null;uniqueIndex:idx_user_permission"`
}

// SetPassword stores the bcrypt hash of raw.
func (u *User) SetPassword(raw string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// HasPerm reports whether the user holds codename. Superusers hold all
// permissions. Permissions must be preloaded.
func (u *User) HasPerm(codename string) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	for _, p := range u.Permissions {
		if p.Codename == codename {
			return true
		}
	}
	return false
}

// FullName falls back to the username when no name was given.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

type PasswordResetForm struct {
	Email string `form:"email" validate:"required,email,max=254"`
}

type SetPasswordForm struct {
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

// FirebaseLoginForm carries the ID token issued by the Firebase client SDK.
type FirebaseLoginForm struct {
	IDToken string `form:"id_token" json:"idToken" validate:"required"`
	Next    string `form:"next" json:"next"`
}
