package nodes

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"feed_recommender/internal/model"
)

// fakeStore 是测试用的内存实现，各字段按需填充
type fakeStore struct {
	liked     []string
	commented []string
	saved     []string
	reposted  []string
	watched   []string
	authored  []string

	interests       []string
	following       []primitive.ObjectID
	feedsByHashtags []model.FeedDoc
	feedsByAuthors  []model.FeedDoc
	explore         []model.ExploreDoc
	related         []model.RelatedDoc
	activeFeeds     map[string]model.FeedDoc
	likesByUsers    []model.LikeDoc
	commentsByUsers []model.CommentDoc

	feedByID  map[string]*model.FeedDoc
	watchTime map[string]float64

	likedSet    map[string]struct{}
	likedSetErr error
}

func (f *fakeStore) LikedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.liked, nil
}

func (f *fakeStore) CommentedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.commented, nil
}

func (f *fakeStore) SavedTargets(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.saved, nil
}

func (f *fakeStore) RepostedOriginals(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.reposted, nil
}

func (f *fakeStore) WatchedItemIDs(ctx context.Context, userID string) ([]string, error) {
	return f.watched, nil
}

func (f *fakeStore) AuthoredFeedIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.authored, nil
}

func (f *fakeStore) UserInterests(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.interests, nil
}

func (f *fakeStore) ActiveFollowing(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return f.following, nil
}

func (f *fakeStore) FeedsByHashtags(ctx context.Context, tags []string, limit int64) ([]model.FeedDoc, error) {
	return f.feedsByHashtags, nil
}

func (f *fakeStore) FeedsByAuthors(ctx context.Context, authors []primitive.ObjectID, limit int64) ([]model.FeedDoc, error) {
	return f.feedsByAuthors, nil
}

func (f *fakeStore) TrendingExplore(ctx context.Context, limit int64) ([]model.ExploreDoc, error) {
	return f.explore, nil
}

func (f *fakeStore) RelatedItems(ctx context.Context, userID string, limit int64) ([]model.RelatedDoc, error) {
	return f.related, nil
}

func (f *fakeStore) ActiveFeedsByIDs(ctx context.Context, ids, excluded []primitive.ObjectID) (map[string]model.FeedDoc, error) {
	if f.activeFeeds == nil {
		return map[string]model.FeedDoc{}, nil
	}
	return f.activeFeeds, nil
}

func (f *fakeStore) LikesByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]model.LikeDoc, error) {
	return f.likesByUsers, nil
}

func (f *fakeStore) CommentsByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]model.CommentDoc, error) {
	return f.commentsByUsers, nil
}

func (f *fakeStore) FeedByID(ctx context.Context, id primitive.ObjectID) (*model.FeedDoc, error) {
	if f.feedByID == nil {
		return nil, nil
	}
	return f.feedByID[id.Hex()], nil
}

func (f *fakeStore) WatchTime(ctx context.Context, userID, itemID string) (float64, error) {
	if f.watchTime == nil {
		return 0, nil
	}
	return f.watchTime[itemID], nil
}

func (f *fakeStore) LikedItemSet(ctx context.Context, userID primitive.ObjectID) (map[string]struct{}, error) {
	if f.likedSetErr != nil {
		return nil, f.likedSetErr
	}
	if f.likedSet == nil {
		return map[string]struct{}{}, nil
	}
	return f.likedSet, nil
}

func (f *fakeStore) InsertInteraction(ctx context.Context, doc model.InteractionDoc) error {
	return nil
}

func (f *fakeStore) SetPopularity(ctx context.Context, itemID string, score float64) error {
	return nil
}

func (f *fakeStore) CollectionCounts(ctx context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}
