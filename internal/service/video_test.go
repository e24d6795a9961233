package service

import (
	"context"
	"math"
	"testing"

	"github.com/Payphone-Digital/vidtube/internal/dto"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/model"
	"github.com/Payphone-Digital/vidtube/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type videoFixture struct {
	users  *testsupport.UserStoreStub
	videos *testsupport.VideoStoreStub
	media  *testsupport.MediaStub
	cache  *MemoryVideoCache
	svc    *VideoService
	dir    string
	owner  *model.User
	other  *model.User
}

func newVideoFixture(t *testing.T) *videoFixture {
	t.Helper()
	users := testsupport.NewUserStoreStub(nil)
	videos := testsupport.NewVideoStoreStub(users)
	gateway := testsupport.NewMediaStub()
	gateway.Duration = 42.5
	memory := NewMemoryVideoCache(defaultTestTTL)
	t.Cleanup(memory.Close)

	return &videoFixture{
		users:  users,
		videos: videos,
		media:  gateway,
		cache:  memory,
		svc:    NewVideoService(videos, gateway, memory),
		dir:    t.TempDir(),
		owner:  seedUser(t, users, "owner"),
		other:  seedUser(t, users, "viewer"),
	}
}

func (f *videoFixture) publish(t *testing.T, title string) *dto.VideoResponse {
	t.Helper()
	video, err := f.svc.Publish(context.Background(), f.owner.ID, dto.PublishVideoRequest{
		Title:       title,
		Description: title + " description",
	}, f.files(t, title))
	require.NoError(t, err)
	return video
}

func (f *videoFixture) files(t *testing.T, prefix string) dto.PublishVideoFiles {
	t.Helper()
	videoPath, err := testsupport.StageFile(f.dir, prefix+".mp4")
	require.NoError(t, err)
	thumbPath, err := testsupport.StageFile(f.dir, prefix+".png")
	require.NoError(t, err)
	return dto.PublishVideoFiles{VideoPath: videoPath, ThumbnailPath: thumbPath}
}

func TestVideoService_Publish(t *testing.T) {
	f := newVideoFixture(t)

	video := f.publish(t, "intro")

	assert.Equal(t, "intro", video.Title)
	assert.Equal(t, 42.5, video.Duration)
	assert.True(t, video.IsPublished)
	assert.Equal(t, f.owner.ID, video.Owner.ID)
	assert.Equal(t, "owner", video.Owner.Username)
	assert.Len(t, f.media.Stored(), 2)
}

func TestVideoService_PublishValidation(t *testing.T) {
	f := newVideoFixture(t)

	_, err := f.svc.Publish(context.Background(), f.owner.ID, dto.PublishVideoRequest{Title: " ", Description: "d"}, f.files(t, "a"))
	assert.ErrorIs(t, err, apperrors.ErrVideoFieldsEmpty)

	files := f.files(t, "b")
	files.ThumbnailPath = ""
	_, err = f.svc.Publish(context.Background(), f.owner.ID, dto.PublishVideoRequest{Title: "t", Description: "d"}, files)
	assert.ErrorIs(t, err, apperrors.ErrVideoFilesMissing)
	assert.Zero(t, f.videos.Count())
}

func TestVideoService_PublishThumbnailFailureDestroysVideo(t *testing.T) {
	f := newVideoFixture(t)
	f.media.FailUpload("clip.png")

	_, err := f.svc.Publish(context.Background(), f.owner.ID, dto.PublishVideoRequest{Title: "t", Description: "d"}, f.files(t, "clip"))

	assert.ErrorIs(t, err, apperrors.ErrThumbnailUpload)
	assert.Empty(t, f.media.Stored())
	assert.Len(t, f.media.Destroyed(), 1)
	assert.Zero(t, f.videos.Count())
}

func TestVideoService_PublishVideoUploadFailure(t *testing.T) {
	f := newVideoFixture(t)
	f.media.FailUpload("clip.mp4")

	_, err := f.svc.Publish(context.Background(), f.owner.ID, dto.PublishVideoRequest{Title: "t", Description: "d"}, f.files(t, "clip"))

	assert.ErrorIs(t, err, apperrors.ErrVideoUpload)
	assert.Empty(t, f.media.Stored())
}

func TestVideoService_PublishInsertFailureDestroysBoth(t *testing.T) {
	f := newVideoFixture(t)
	f.videos.CreateErr = assert.AnError

	_, err := f.svc.Publish(context.Background(), f.owner.ID, dto.PublishVideoRequest{Title: "t", Description: "d"}, f.files(t, "clip"))

	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Empty(t, f.media.Stored())
	assert.Len(t, f.media.Destroyed(), 2)
}

func TestVideoService_GetByIDVisibility(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "hidden")

	_, err := f.svc.TogglePublish(context.Background(), video.ID, f.owner.ID)
	require.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), video.ID, f.other.ID)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)

	_, err = f.svc.GetByID(context.Background(), video.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)

	own, err := f.svc.GetByID(context.Background(), video.ID, f.owner.ID)
	require.NoError(t, err)
	assert.False(t, own.IsPublished)

	_, err = f.svc.GetByID(context.Background(), 999, f.owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)
}

func TestVideoService_GetByIDUsesCache(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "cached")

	_, err := f.svc.GetByID(context.Background(), video.ID, 0)
	require.NoError(t, err)

	cached, ok := f.cache.Get(context.Background(), video.ID)
	require.True(t, ok)
	assert.Equal(t, "cached", cached.Title)

	title := "renamed"
	_, err = f.svc.Update(context.Background(), video.ID, f.owner.ID, dto.UpdateVideoRequest{Title: &title}, "")
	require.NoError(t, err)

	_, ok = f.cache.Get(context.Background(), video.ID)
	assert.False(t, ok, "update must invalidate the cached entry")

	fresh, err := f.svc.GetByID(context.Background(), video.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "renamed", fresh.Title)
}

func TestVideoService_CachedOwnerFollowsProfileChanges(t *testing.T) {
	f := newVideoFixture(t)
	users := NewUserService(f.users, NewTokenService(f.users, testJWTConfig()), f.media, f.cache)
	video := f.publish(t, "owned")
	ctx := context.Background()

	first, err := f.svc.GetByID(ctx, video.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Test owner", first.Owner.Fullname)

	_, err = users.UpdateAccount(ctx, f.owner.ID, dto.UpdateAccountRequest{Fullname: "Renamed Owner", Email: "owner@example.com"})
	require.NoError(t, err)

	_, ok := f.cache.Get(ctx, video.ID)
	assert.False(t, ok, "profile change must drop the owner's cached videos")

	renamed, err := f.svc.GetByID(ctx, video.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Owner", renamed.Owner.Fullname)

	avatarPath, err := testsupport.StageFile(f.dir, "new-avatar.png")
	require.NoError(t, err)
	updated, err := users.UpdateAvatar(ctx, f.owner.ID, avatarPath)
	require.NoError(t, err)

	fresh, err := f.svc.GetByID(ctx, video.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, updated.Avatar, fresh.Owner.Avatar)
}

func TestVideoService_UpdateMerge(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "original")

	blank := "   "
	description := "  new description "
	updated, err := f.svc.Update(context.Background(), video.ID, f.owner.ID, dto.UpdateVideoRequest{
		Title:       &blank,
		Description: &description,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "original", updated.Title)
	assert.Equal(t, "new description", updated.Description)
	assert.Equal(t, video.Thumbnail, updated.Thumbnail)

	unchanged, err := f.svc.Update(context.Background(), video.ID, f.owner.ID, dto.UpdateVideoRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, updated.Description, unchanged.Description)
}

func TestVideoService_UpdateThumbnail(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "thumbs")
	stored, err := f.videos.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	oldKey := stored.ThumbnailKey

	path, err := testsupport.StageFile(f.dir, "fresh.jpg")
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), video.ID, f.owner.ID, dto.UpdateVideoRequest{}, path)
	require.NoError(t, err)

	assert.NotEqual(t, video.Thumbnail, updated.Thumbnail)
	assert.Contains(t, f.media.Destroyed(), oldKey)
}

func TestVideoService_OwnerOnly(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "mine")
	title := "stolen"

	_, err := f.svc.Update(context.Background(), video.ID, f.other.ID, dto.UpdateVideoRequest{Title: &title}, "")
	assert.ErrorIs(t, err, apperrors.ErrNotVideoOwner)

	_, err = f.svc.TogglePublish(context.Background(), video.ID, f.other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotVideoOwner)

	err = f.svc.Delete(context.Background(), video.ID, f.other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotVideoOwner)
	assert.Equal(t, 1, f.videos.Count())
}

func TestVideoService_Delete(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "gone")

	require.NoError(t, f.svc.Delete(context.Background(), video.ID, f.owner.ID))

	assert.Zero(t, f.videos.Count())
	assert.Empty(t, f.media.Stored())

	err := f.svc.Delete(context.Background(), video.ID, f.owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)
}

func TestVideoService_DeleteKeepsRecordWhenMediaFails(t *testing.T) {
	f := newVideoFixture(t)
	video := f.publish(t, "sticky")
	f.media.DestroyErr = assert.AnError

	err := f.svc.Delete(context.Background(), video.ID, f.owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrMediaDelete)
	assert.Equal(t, 1, f.videos.Count())

	f.media.DestroyErr = nil
	require.NoError(t, f.svc.Delete(context.Background(), video.ID, f.owner.ID))
	assert.Zero(t, f.videos.Count())
}

func TestVideoService_List(t *testing.T) {
	f := newVideoFixture(t)
	first := f.publish(t, "alpha")
	f.publish(t, "beta")
	hidden := f.publish(t, "gamma")
	_, err := f.svc.TogglePublish(context.Background(), hidden.ID, f.owner.ID)
	require.NoError(t, err)

	videos, total, err := f.svc.List(context.Background(), dto.VideoListQuery{Page: 1, Limit: 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, videos, 2)
	assert.Equal(t, "beta", videos[0].Title, "newest first by default")

	own, total, err := f.svc.List(context.Background(), dto.VideoListQuery{Page: 1, Limit: 10, UserID: f.owner.ID}, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, own, 3)

	_, total, err = f.svc.List(context.Background(), dto.VideoListQuery{Page: 1, Limit: 10, UserID: f.owner.ID}, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	asc, _, err := f.svc.List(context.Background(), dto.VideoListQuery{Page: 1, Limit: 1, SortBy: "bogus", SortType: "asc"}, 0)
	require.NoError(t, err)
	require.Len(t, asc, 1)
	assert.Equal(t, first.ID, asc[0].ID)

	matched, total, err := f.svc.List(context.Background(), dto.VideoListQuery{Page: 1, Limit: 10, Query: "ALPHA"}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alpha", matched[0].Title)

	empty, total, err := f.svc.List(context.Background(), dto.VideoListQuery{Page: 5, Limit: 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, empty)

	far, total, err := f.svc.List(context.Background(), dto.VideoListQuery{Page: math.MaxInt, Limit: math.MaxInt}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, far)
}
