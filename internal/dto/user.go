package dto

import "time"

// RegisterRequest is bound from the multipart register form. Blank fields
// are rejected by the service so the caller gets a single message.
type RegisterRequest struct {
	Fullname string `form:"fullname" json:"fullname" binding:"max=100"`
	Email    string `form:"email" json:"email" binding:"omitempty,email,max=255"`
	Username string `form:"username" json:"username" binding:"max=50"`
	Password string `form:"password" json:"password"`
}

// RegisterFiles are local temp paths of the uploaded images.
type RegisterFiles struct {
	AvatarPath     string
	CoverImagePath string
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type UpdateAccountRequest struct {
	Fullname string `json:"fullname" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
}

// UserResponse never carries the password hash or refresh token.
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Fullname   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type ChannelProfileResponse struct {
	ID                        uint   `json:"id"`
	Fullname                  string `json:"fullname"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}
