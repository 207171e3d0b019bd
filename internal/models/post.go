package models

import (
	"time"
)

// Post is a text entry by a user, optionally tagged to a Group.
type Post struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"author" gorm:"constraint:OnDelete:CASCADE"`
	GroupID  *uint     `json:"group_id,omitempty" gorm:"index"`
	Group    *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Image    string    `json:"image,omitempty" gorm:"size:255"` // storage name, empty when absent
	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// PostForm is bound from the create and edit forms. The image travels as a
// multipart file and is handled separately.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,numeric"`
}
