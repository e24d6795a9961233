package service

import (
	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/Payphone-Digital/vidtube/internal/model"
)

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Fullname:   user.Fullname,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func toVideoResponse(video *model.Video) dto.VideoResponse {
	return dto.VideoResponse{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		VideoFile:   video.VideoFile,
		Thumbnail:   video.Thumbnail,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		Owner: dto.VideoOwner{
			ID:       video.OwnerID,
			Username: video.Owner.Username,
			Fullname: video.Owner.Fullname,
			Avatar:   video.Owner.Avatar,
		},
		CreatedAt: video.CreatedAt,
		UpdatedAt: video.UpdatedAt,
	}
}

func toChannelProfileResponse(profile *model.ChannelProfile) dto.ChannelProfileResponse {
	return dto.ChannelProfileResponse{
		ID:                        profile.ID,
		Fullname:                  profile.Fullname,
		Username:                  profile.Username,
		Email:                     profile.Email,
		Avatar:                    profile.Avatar,
		CoverImage:                profile.CoverImage,
		SubscribersCount:          profile.SubscribersCount,
		ChannelsSubscribedToCount: profile.ChannelsSubscribedToCount,
		IsSubscribed:              profile.IsSubscribed,
	}
}
