package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/model"
	"gorm.io/gorm"
)

// UserStoreStub is an in-memory service.UserStore for tests. Usernames and
// emails are unique like the real table.
type UserStoreStub struct {
	mu     sync.RWMutex
	users  map[uint]model.User
	nextID uint
	subs   *SubscriptionStoreStub

	// CreateErr, when set, is returned by Create instead of inserting.
	CreateErr error
	// SetHashErr, when set, is returned by SetRefreshTokenHash.
	SetHashErr error
}

// NewUserStoreStub constructs a UserStoreStub. subs may be nil when channel
// profiles are not exercised.
func NewUserStoreStub(subs *SubscriptionStoreStub) *UserStoreStub {
	return &UserStoreStub{users: make(map[uint]model.User), subs: subs}
}

func (s *UserStoreStub) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *UserStoreStub) GetByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (s *UserStoreStub) GetByLogin(_ context.Context, username, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.sortedUsers() {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *UserStoreStub) ExistsByUsernameOrEmail(_ context.Context, username, email string, excludeID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, user := range s.users {
		if id == excludeID {
			continue
		}
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStoreStub) UpdateFields(_ context.Context, id uint, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		str, _ := value.(string)
		switch column {
		case "fullname":
			user.Fullname = str
		case "email":
			user.Email = str
		case "password":
			user.Password = str
		case "avatar":
			user.Avatar = str
		case "avatar_key":
			user.AvatarKey = str
		case "cover_image":
			user.CoverImage = str
		case "cover_image_key":
			user.CoverImageKey = str
		}
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return nil
}

func (s *UserStoreStub) SetRefreshTokenHash(_ context.Context, id uint, hash *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetHashErr != nil {
		return s.SetHashErr
	}
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if hash == nil {
		user.RefreshTokenHash = nil
	} else {
		value := *hash
		user.RefreshTokenHash = &value
	}
	s.users[id] = user
	return nil
}

func (s *UserStoreStub) SwapRefreshTokenHash(_ context.Context, id uint, oldHash, newHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.RefreshTokenHash == nil || *user.RefreshTokenHash != oldHash {
		return false, nil
	}
	user.RefreshTokenHash = &newHash
	s.users[id] = user
	return true, nil
}

func (s *UserStoreStub) GetChannelProfile(_ context.Context, username string, viewerID uint) (*model.ChannelProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username != username {
			continue
		}
		profile := &model.ChannelProfile{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			Fullname:   user.Fullname,
			Avatar:     user.Avatar,
			CoverImage: user.CoverImage,
		}
		if s.subs != nil {
			profile.SubscribersCount, profile.ChannelsSubscribedToCount, profile.IsSubscribed = s.subs.counts(user.ID, viewerID)
		}
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Get returns a copy of the stored row, for assertions.
func (s *UserStoreStub) Get(id uint) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok
}

// Count returns the number of stored users.
func (s *UserStoreStub) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// must hold lock
func (s *UserStoreStub) sortedUsers() []model.User {
	out := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SubscriptionStoreStub is an in-memory service.SubscriptionStore.
type SubscriptionStoreStub struct {
	mu    sync.RWMutex
	edges map[[2]uint]struct{}
}

func NewSubscriptionStoreStub() *SubscriptionStoreStub {
	return &SubscriptionStoreStub{edges: make(map[[2]uint]struct{})}
}

func (s *SubscriptionStoreStub) Toggle(_ context.Context, subscriberID, channelID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]uint{subscriberID, channelID}
	if _, ok := s.edges[key]; ok {
		delete(s.edges, key)
		return false, nil
	}
	s.edges[key] = struct{}{}
	return true, nil
}

func (s *SubscriptionStoreStub) counts(userID, viewerID uint) (subscribers, subscribedTo int64, viewerFollows bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for edge := range s.edges {
		if edge[1] == userID {
			subscribers++
			if edge[0] == viewerID {
				viewerFollows = true
			}
		}
		if edge[0] == userID {
			subscribedTo++
		}
	}
	return subscribers, subscribedTo, viewerFollows
}

// VideoStoreStub is an in-memory service.VideoStore. Owners are resolved
// through the paired UserStoreStub when present.
type VideoStoreStub struct {
	mu     sync.RWMutex
	videos map[uint]model.Video
	nextID uint
	users  *UserStoreStub

	CreateErr error
	DeleteErr error
}

func NewVideoStoreStub(users *UserStoreStub) *VideoStoreStub {
	return &VideoStoreStub{videos: make(map[uint]model.Video), users: users}
}

func (s *VideoStoreStub) Create(_ context.Context, video *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.nextID++
	video.ID = s.nextID
	video.CreatedAt = time.Now().UTC().Add(time.Duration(s.nextID) * time.Millisecond)
	video.UpdatedAt = video.CreatedAt
	s.videos[video.ID] = *video
	return nil
}

func (s *VideoStoreStub) GetByID(_ context.Context, id uint) (*model.Video, error) {
	s.mu.RLock()
	video, ok := s.videos[id]
	s.mu.RUnlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.attachOwner(&video)
	return &video, nil
}

func (s *VideoStoreStub) List(_ context.Context, filter model.VideoFilter) ([]model.Video, int64, error) {
	s.mu.RLock()
	matched := make([]model.Video, 0, len(s.videos))
	query := strings.ToLower(filter.Query)
	for _, video := range s.videos {
		if filter.OwnerID != 0 && video.OwnerID != filter.OwnerID {
			continue
		}
		if !filter.IncludeHidden && !video.IsPublished {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(video.Title), query) &&
			!strings.Contains(strings.ToLower(video.Description), query) {
			continue
		}
		matched = append(matched, video)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		less := lessBy(filter.SortColumn, matched[i], matched[j])
		if filter.Descending {
			return lessBy(filter.SortColumn, matched[j], matched[i])
		}
		return less
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	page := matched[start:end]
	for i := range page {
		s.attachOwner(&page[i])
	}
	return page, total, nil
}

func (s *VideoStoreStub) UpdateFields(_ context.Context, id uint, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		switch column {
		case "title":
			video.Title, _ = value.(string)
		case "description":
			video.Description, _ = value.(string)
		case "thumbnail":
			video.Thumbnail, _ = value.(string)
		case "thumbnail_key":
			video.ThumbnailKey, _ = value.(string)
		case "is_published":
			video.IsPublished, _ = value.(bool)
		}
	}
	video.UpdatedAt = time.Now().UTC()
	s.videos[id] = video
	return nil
}

func (s *VideoStoreStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.videos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.videos, id)
	return nil
}

// Count returns the number of stored videos.
func (s *VideoStoreStub) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

func (s *VideoStoreStub) attachOwner(video *model.Video) {
	if s.users == nil {
		return
	}
	if owner, ok := s.users.Get(video.OwnerID); ok {
		video.Owner = owner
	}
}

func lessBy(column string, a, b model.Video) bool {
	switch column {
	case "title":
		return a.Title < b.Title
	case "duration":
		return a.Duration < b.Duration
	case "views":
		return a.Views < b.Views
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
