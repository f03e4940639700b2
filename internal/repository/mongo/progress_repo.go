package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/repository"
)

const progressCollectionName = "user_progress"

// mongoProgressRepository stores one document per owner, _id is the lowercased email.
type mongoProgressRepository struct {
	collection *mongo.Collection
}

func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{collection: db.Collection(progressCollectionName)}
}

func (r *mongoProgressRepository) Get(ctx context.Context, email string) (*domain.UserProgress, error) {
	key := domain.NormalizeEmail(email)
	var p domain.UserProgress
	if err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NewUserProgress(key), nil
		}
		return nil, err
	}
	if p.WeightLog == nil {
		p.WeightLog = []domain.WeightEntry{}
	}
	if p.PersonalRecords == nil {
		p.PersonalRecords = []domain.PersonalRecordEntry{}
	}
	return &p, nil
}

// Save upserts, creating the record lazily on first write.
func (r *mongoProgressRepository) Save(ctx context.Context, progress *domain.UserProgress) error {
	progress.Email = domain.NormalizeEmail(progress.Email)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": progress.Email}, progress, options.Replace().SetUpsert(true))
	return err
}
