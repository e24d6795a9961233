package dto

import "time"

type PublishVideoRequest struct {
	Title       string `form:"title" json:"title" binding:"max=200"`
	Description string `form:"description" json:"description" binding:"max=5000"`
}

type PublishVideoFiles struct {
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoRequest uses pointers so an absent field is distinguishable from
// an empty one. Nil or blank keeps the stored value.
type UpdateVideoRequest struct {
	Title       *string `form:"title" json:"title" binding:"omitempty,max=200"`
	Description *string `form:"description" json:"description" binding:"omitempty,max=5000"`
}

type VideoListQuery struct {
	Page     int
	Limit    int
	Query    string
	SortBy   string
	SortType string
	UserID   uint
}

type VideoOwner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

type VideoResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoFile   string     `json:"videoFile"`
	Thumbnail   string     `json:"thumbnail"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	IsPublished bool       `json:"isPublished"`
	Owner       VideoOwner `json:"owner"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
