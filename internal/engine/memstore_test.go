package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/magwach/twitter/internal/models"
	"github.com/magwach/twitter/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory double for all three repositories. It honors the
// same contract as the Mongo implementations: set mutations are idempotent
// field-level operations, follow notifications are deduplicated per ordered
// pair, and queries come back newest first. failures injects transient
// errors per operation name to exercise the reconciliation paths.
type memStore struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	notifications []*models.Notification
	failures      map[string]int
	clock         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[primitive.ObjectID]*models.User),
		posts:    make(map[primitive.ObjectID]*models.Post),
		failures: make(map[string]int),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// failTimes makes the next n calls of the named operation fail.
func (s *memStore) failTimes(op string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = n
}

func (s *memStore) injected(op string) error {
	if s.failures[op] > 0 {
		s.failures[op]--
		return errInjected
	}
	return nil
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func addSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, m := range set {
		if m == id {
			return set
		}
	}
	return append(set, id)
}

func removeSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := set[:0]
	for _, m := range set {
		if m != id {
			out = append(out, m)
		}
	}
	return out
}

// --- UserRepository ---

func (s *memStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = s.tick()
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("GetUserByID"); err != nil {
		return nil, err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memStore) GetUserByHandle(_ context.Context, handle string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.UserName == handle {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memStore) userSetOp(op string, userID primitive.ObjectID, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(op); err != nil {
		return err
	}
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(user)
	return nil
}

func (s *memStore) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return s.userSetOp("AddFollower", userID, func(u *models.User) {
		u.Followers = addSet(u.Followers, followerID)
	})
}

func (s *memStore) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return s.userSetOp("RemoveFollower", userID, func(u *models.User) {
		u.Followers = removeSet(u.Followers, followerID)
	})
}

func (s *memStore) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return s.userSetOp("AddFollowing", userID, func(u *models.User) {
		u.Following = addSet(u.Following, targetID)
	})
}

func (s *memStore) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return s.userSetOp("RemoveFollowing", userID, func(u *models.User) {
		u.Following = removeSet(u.Following, targetID)
	})
}

func (s *memStore) AddLikedPost(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.userSetOp("AddLikedPost", userID, func(u *models.User) {
		u.LikedPosts = addSet(u.LikedPosts, postID)
	})
}

func (s *memStore) RemoveLikedPost(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.userSetOp("RemoveLikedPost", userID, func(u *models.User) {
		u.LikedPosts = removeSet(u.LikedPosts, postID)
	})
}

func (s *memStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.UserName = user.UserName
	existing.FullName = user.FullName
	existing.Email = user.Email
	existing.Password = user.Password
	existing.Bio = user.Bio
	existing.Link = user.Link
	existing.ProfileImg = user.ProfileImg
	existing.CoverImg = user.CoverImg
	existing.UpdatedAt = s.tick()
	return nil
}

func (s *memStore) GetSuggested(_ context.Context, forUserID primitive.ObjectID, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	me, ok := s.users[forUserID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	var out []models.User
	for id, user := range s.users {
		if id == forUserID || me.IsFollowing(id) || len(out) >= limit {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

// --- PostRepository ---

func (s *memStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = s.tick()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	clone := *post
	s.posts[post.ID] = &clone
	return nil
}

func (s *memStore) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("GetPostByID"); err != nil {
		return nil, err
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := clonePost(post)
	return &clone, nil
}

func (s *memStore) DeletePost(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("DeletePost"); err != nil {
		return err
	}
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memStore) AddLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return s.postLikeOp("AddLike", postID, func(p *models.Post) {
		p.Likes = addSet(p.Likes, userID)
	})
}

func (s *memStore) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return s.postLikeOp("RemoveLike", postID, func(p *models.Post) {
		p.Likes = removeSet(p.Likes, userID)
	})
}

func (s *memStore) postLikeOp(op string, postID primitive.ObjectID, apply func(*models.Post)) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(op); err != nil {
		return nil, err
	}
	post, ok := s.posts[postID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	apply(post)
	clone := clonePost(post)
	return &clone, nil
}

func (s *memStore) AppendComment(_ context.Context, postID primitive.ObjectID, comment *models.Comment) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("AppendComment"); err != nil {
		return nil, err
	}
	post, ok := s.posts[postID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = s.tick()
	}
	post.Comments = append(post.Comments, *comment)
	clone := clonePost(post)
	return &clone, nil
}

func (s *memStore) GetAllPosts(_ context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectPosts(func(*models.Post) bool { return true }), nil
}

func (s *memStore) GetPostsByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectPosts(func(p *models.Post) bool { return p.OwnerID == ownerID }), nil
}

func (s *memStore) GetPostsByOwners(_ context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owners := make(map[primitive.ObjectID]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	return s.selectPosts(func(p *models.Post) bool { return owners[p.OwnerID] }), nil
}

func (s *memStore) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.selectPosts(func(p *models.Post) bool { return want[p.ID] }), nil
}

func (s *memStore) selectPosts(match func(*models.Post) bool) []models.Post {
	var out []models.Post
	for _, post := range s.posts {
		if match(post) {
			out = append(out, clonePost(post))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func clonePost(p *models.Post) models.Post {
	clone := *p
	clone.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	clone.Comments = append([]models.Comment(nil), p.Comments...)
	return clone
}

// --- NotificationRepository ---

func (s *memStore) CreateNotification(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("CreateNotification"); err != nil {
		return err
	}
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = s.tick()
	clone := *notification
	s.notifications = append(s.notifications, &clone)
	return nil
}

func (s *memStore) UpsertFollowNotification(_ context.Context, from, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("UpsertFollowNotification"); err != nil {
		return err
	}
	for _, n := range s.notifications {
		if n.FromID == from && n.ToID == to && n.Type == models.NotificationFollow && !n.Read {
			return nil
		}
	}
	s.notifications = append(s.notifications, &models.Notification{
		ID:        primitive.NewObjectID(),
		FromID:    from,
		ToID:      to,
		Type:      models.NotificationFollow,
		CreatedAt: s.tick(),
	})
	return nil
}

func (s *memStore) DeleteFollowNotification(_ context.Context, from, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("DeleteFollowNotification"); err != nil {
		return err
	}
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.FromID == from && n.ToID == to && n.Type == models.NotificationFollow {
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return nil
}

func (s *memStore) GetNotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memStore) GetByRecipient(_ context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.ToID == to {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) MarkAsRead(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *memStore) MarkAllAsRead(_ context.Context, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("MarkAllAsRead"); err != nil {
		return err
	}
	for _, n := range s.notifications {
		if n.ToID == to {
			n.Read = true
		}
	}
	return nil
}

func (s *memStore) DeleteAllForRecipient(_ context.Context, to primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.ToID == to {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return deleted, nil
}

// notificationsFor returns the raw ledger entries addressed to the user.
func (s *memStore) notificationsFor(to primitive.ObjectID) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.ToID == to {
			out = append(out, *n)
		}
	}
	return out
}

// --- media double ---

// stubMedia records uploads and releases; failRelease makes Release fail.
type stubMedia struct {
	mu          sync.Mutex
	uploads     int
	released    []string
	failRelease bool
}

func (m *stubMedia) Upload(_ context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	return fmt.Sprintf("mem://asset-%d", m.uploads), nil
}

func (m *stubMedia) Release(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRelease {
		return errInjected
	}
	m.released = append(m.released, url)
	return nil
}
