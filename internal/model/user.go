package model

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username         string  `gorm:"column:username;uniqueIndex;not null;size:50"`
	Email            string  `gorm:"column:email;uniqueIndex;not null;size:255"`
	Fullname         string  `gorm:"column:fullname;index;not null;size:100"`
	Avatar           string  `gorm:"column:avatar;not null"`
	AvatarKey        string  `gorm:"column:avatar_key"`
	CoverImage       string  `gorm:"column:cover_image"`
	CoverImageKey    string  `gorm:"column:cover_image_key"`
	Password         string  `gorm:"column:password;not null"`
	RefreshTokenHash *string `gorm:"column:refresh_token_hash;default:null;size:64"`
}

// ChannelProfile is the read model produced by the channel aggregation query.
type ChannelProfile struct {
	ID                        uint
	Username                  string
	Email                     string
	Fullname                  string
	Avatar                    string
	CoverImage                string
	SubscribersCount          int64
	ChannelsSubscribedToCount int64
	IsSubscribed              bool
}
