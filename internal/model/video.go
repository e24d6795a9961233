package model

import (
	"gorm.io/gorm"
)

type Video struct {
	gorm.Model
	OwnerID      uint    `gorm:"column:owner_id;index;not null"`
	Owner        User    `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title        string  `gorm:"column:title;not null;size:200"`
	Description  string  `gorm:"column:description;type:text;not null"`
	VideoFile    string  `gorm:"column:video_file;not null"`
	VideoFileKey string  `gorm:"column:video_file_key"`
	Thumbnail    string  `gorm:"column:thumbnail;not null"`
	ThumbnailKey string  `gorm:"column:thumbnail_key"`
	Duration     float64 `gorm:"column:duration;not null;default:0"`
	Views        int64   `gorm:"column:views;not null;default:0"`
	IsPublished  bool    `gorm:"column:is_published;not null;default:true;index"`
}

// VideoFilter narrows a video listing. Zero values mean no filter.
type VideoFilter struct {
	Query         string
	OwnerID       uint
	IncludeHidden bool
	SortColumn    string
	Descending    bool
	Limit         int
	Offset        int
}
