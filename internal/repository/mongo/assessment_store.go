package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/repository"
)

// profileAssessmentStore keeps the latest assessment embedded in the user profile.
// The owner key is the user ObjectID hex.
type profileAssessmentStore struct {
	collection *mongo.Collection
}

func NewMongoAssessmentStore(db *mongo.Database) repository.AssessmentStore {
	return &profileAssessmentStore{collection: db.Collection(userCollectionName)}
}

func (s *profileAssessmentStore) GetLatest(ctx context.Context, owner string) (*domain.Assessment, error) {
	id, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc struct {
		LatestAssessment *domain.Assessment `bson:"latestAssessment"`
	}
	opts := options.FindOne().SetProjection(bson.M{"latestAssessment": 1})
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if doc.LatestAssessment == nil {
		return nil, repository.ErrNotFound
	}
	return doc.LatestAssessment, nil
}

func (s *profileAssessmentStore) SetLatest(ctx context.Context, owner string, a *domain.Assessment) error {
	return s.update(ctx, owner, bson.M{
		"$set": bson.M{"latestAssessment": a, "updatedAt": time.Now().UTC()},
	})
}

func (s *profileAssessmentStore) ClearLatest(ctx context.Context, owner string) error {
	return s.update(ctx, owner, bson.M{
		"$unset": bson.M{"latestAssessment": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (s *profileAssessmentStore) update(ctx context.Context, owner string, update bson.M) error {
	id, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return fmt.Errorf("owner %q is not a user id: %w", owner, repository.ErrNotFound)
	}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
