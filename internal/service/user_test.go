package service

import (
	"context"
	"testing"

	"github.com/Payphone-Digital/vidtube/internal/dto"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	users  *testsupport.UserStoreStub
	subs   *testsupport.SubscriptionStoreStub
	media  *testsupport.MediaStub
	tokens *TokenService
	svc    *UserService
	dir    string
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	subs := testsupport.NewSubscriptionStoreStub()
	users := testsupport.NewUserStoreStub(subs)
	gateway := testsupport.NewMediaStub()
	tokens := NewTokenService(users, testJWTConfig())

	return &userFixture{
		users:  users,
		subs:   subs,
		media:  gateway,
		tokens: tokens,
		svc:    NewUserService(users, tokens, gateway, nil),
		dir:    t.TempDir(),
	}
}

func (f *userFixture) stage(t *testing.T, name string) string {
	t.Helper()
	path, err := testsupport.StageFile(f.dir, name)
	require.NoError(t, err)
	return path
}

func (f *userFixture) register(t *testing.T, username string) *dto.UserResponse {
	t.Helper()
	user, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "User " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: "secret123",
	}, dto.RegisterFiles{AvatarPath: f.stage(t, username+"-avatar.png")})
	require.NoError(t, err)
	return user
}

func TestUserService_Register(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "  Alice Doe ",
		Email:    "Alice@Example.com",
		Username: " Alice ",
		Password: "secret123",
	}, dto.RegisterFiles{
		AvatarPath:     f.stage(t, "avatar.png"),
		CoverImagePath: f.stage(t, "cover.jpg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice Doe", user.Fullname)
	assert.NotEmpty(t, user.Avatar)
	assert.NotEmpty(t, user.CoverImage)

	stored, ok := f.users.Get(user.ID)
	require.True(t, ok)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, checkPassword(stored.Password, "secret123"))
	assert.Nil(t, stored.RefreshTokenHash)
}

func TestUserService_RegisterMissingFields(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Alice",
		Email:    "alice@example.com",
		Username: "   ",
		Password: "secret123",
	}, dto.RegisterFiles{AvatarPath: f.stage(t, "avatar.png")})

	assert.ErrorIs(t, err, apperrors.ErrMissingFields)
	assert.Zero(t, f.users.Count())
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "alice")

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Other",
		Email:    "other@example.com",
		Username: "ALICE",
		Password: "secret123",
	}, dto.RegisterFiles{AvatarPath: f.stage(t, "avatar2.png")})

	assert.ErrorIs(t, err, apperrors.ErrUserExists)
	assert.Equal(t, 1, f.users.Count())
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "alice")

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Other",
		Email:    "ALICE@example.com",
		Username: "carol",
		Password: "secret123",
	}, dto.RegisterFiles{AvatarPath: f.stage(t, "avatar3.png")})

	assert.ErrorIs(t, err, apperrors.ErrUserExists)
	assert.Equal(t, 1, f.users.Count())
	assert.Len(t, f.media.Stored(), 1, "no upload happens for a rejected registration")
}

func TestUserService_RegisterWithoutAvatar(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}, dto.RegisterFiles{})

	assert.ErrorIs(t, err, apperrors.ErrAvatarRequired)
	assert.Zero(t, f.users.Count())
}

func TestUserService_RegisterAvatarUploadFails(t *testing.T) {
	f := newUserFixture(t)
	f.media.FailUpload("avatar.png")

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}, dto.RegisterFiles{AvatarPath: f.stage(t, "avatar.png")})

	assert.ErrorIs(t, err, apperrors.ErrAvatarUpload)
	assert.Zero(t, f.users.Count())
}

func TestUserService_RegisterToleratesCoverFailure(t *testing.T) {
	f := newUserFixture(t)
	f.media.FailUpload("cover.jpg")

	user, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}, dto.RegisterFiles{
		AvatarPath:     f.stage(t, "avatar.png"),
		CoverImagePath: f.stage(t, "cover.jpg"),
	})

	require.NoError(t, err)
	assert.Empty(t, user.CoverImage)
}

func TestUserService_RegisterInsertFailureDestroysUploads(t *testing.T) {
	f := newUserFixture(t)
	f.users.CreateErr = assert.AnError

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Fullname: "Alice",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}, dto.RegisterFiles{
		AvatarPath:     f.stage(t, "avatar.png"),
		CoverImagePath: f.stage(t, "cover.jpg"),
	})

	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Empty(t, f.media.Stored())
	assert.Len(t, f.media.Destroyed(), 2)
}

func TestUserService_Login(t *testing.T) {
	f := newUserFixture(t)
	registered := f.register(t, "alice")

	result, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, registered.ID, result.User.ID)
	stored, _ := f.users.Get(registered.ID)
	require.NotNil(t, stored.RefreshTokenHash)
	assert.Equal(t, HashToken(result.Tokens.RefreshToken), *stored.RefreshTokenHash)
}

func TestUserService_LoginWrongPasswordLeavesDigest(t *testing.T) {
	f := newUserFixture(t)
	registered := f.register(t, "alice")

	first, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	stored, _ := f.users.Get(registered.ID)
	assert.Equal(t, HashToken(first.Tokens.RefreshToken), *stored.RefreshTokenHash)
}

func TestUserService_LoginErrors(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrLoginIdentifier)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_LogoutAndRefresh(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "alice")

	result, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = f.svc.RefreshToken(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	rotated, err := f.svc.RefreshToken(context.Background(), result.Tokens.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), result.User.ID))

	_, err = f.svc.RefreshToken(context.Background(), rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrRefreshTokenUsed)
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "alice")

	err := f.svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOldPassword)

	require.NoError(t, f.svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newpass"}))

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "newpass"})
	assert.NoError(t, err)
}

func TestUserService_UpdateAccount(t *testing.T) {
	f := newUserFixture(t)
	alice := f.register(t, "alice")
	f.register(t, "bob")

	_, err := f.svc.UpdateAccount(context.Background(), alice.ID, dto.UpdateAccountRequest{Fullname: "Alice", Email: "BOB@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	updated, err := f.svc.UpdateAccount(context.Background(), alice.ID, dto.UpdateAccountRequest{Fullname: " Alice B ", Email: "alice.b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Fullname)
	assert.Equal(t, "alice.b@example.com", updated.Email)

	_, err = f.svc.UpdateAccount(context.Background(), alice.ID, dto.UpdateAccountRequest{Fullname: " ", Email: "a@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrMissingFields)
}

func TestUserService_UpdateAvatarReplacesObject(t *testing.T) {
	f := newUserFixture(t)
	user := f.register(t, "alice")
	before, _ := f.users.Get(user.ID)

	updated, err := f.svc.UpdateAvatar(context.Background(), user.ID, f.stage(t, "new.png"))
	require.NoError(t, err)

	assert.NotEqual(t, user.Avatar, updated.Avatar)
	assert.Contains(t, f.media.Destroyed(), before.AvatarKey)

	_, err = f.svc.UpdateAvatar(context.Background(), user.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrAvatarRequired)

	f.media.FailUpload("broken.png")
	_, err = f.svc.UpdateCoverImage(context.Background(), user.ID, f.stage(t, "broken.png"))
	assert.ErrorIs(t, err, apperrors.ErrCoverImageUpload)
}

func TestUserService_GetChannelProfile(t *testing.T) {
	f := newUserFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	ctx := context.Background()
	_, err := f.subs.Toggle(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.subs.Toggle(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.subs.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	profile, err := f.svc.GetChannelProfile(ctx, "Alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	anonymous, err := f.svc.GetChannelProfile(ctx, "alice", 0)
	require.NoError(t, err)
	assert.False(t, anonymous.IsSubscribed)

	_, err = f.svc.GetChannelProfile(ctx, "ghost", 0)
	assert.ErrorIs(t, err, apperrors.ErrChannelNotFound)

	_, err = f.svc.GetChannelProfile(ctx, "  ", 0)
	assert.ErrorIs(t, err, apperrors.ErrUsernameMissing)
}

func TestUserService_Authenticate(t *testing.T) {
	f := newUserFixture(t)
	f.register(t, "alice")

	result, err := f.svc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	user, err := f.svc.Authenticate(context.Background(), result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password)
	assert.Nil(t, user.RefreshTokenHash)

	_, err = f.svc.Authenticate(context.Background(), "bogus")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
