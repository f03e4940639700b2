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

const planCollectionName = "pending_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{collection: db.Collection(planCollectionName)}
}

// Create inserts a new plan. The id is the document _id, so a collision is a duplicate key.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.PendingWorkoutPlan) error {
	if plan.ID == "" || plan.UserEmail == "" {
		return errors.New("plan requires id and userEmail")
	}
	plan.UserEmailKey = domain.NormalizeEmail(plan.UserEmail)
	plan.AssignedTrainerKey = domain.TrainerKey(plan.AssignedTrainerName)

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *mongoPlanRepository) GetByID(ctx context.Context, id string) (*domain.PendingWorkoutPlan, error) {
	var plan domain.PendingWorkoutPlan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *mongoPlanRepository) ListByOwner(ctx context.Context, email string) ([]domain.PendingWorkoutPlan, error) {
	return r.find(ctx, bson.M{"userEmailKey": domain.NormalizeEmail(email)})
}

func (r *mongoPlanRepository) ListByTrainer(ctx context.Context, trainer string, statuses ...domain.PlanStatus) ([]domain.PendingWorkoutPlan, error) {
	filter := bson.M{"assignedTrainerKey": domain.TrainerKey(trainer)}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter)
}

func (r *mongoPlanRepository) find(ctx context.Context, filter bson.M) ([]domain.PendingWorkoutPlan, error) {
	// UUIDv7 ids sort by creation time, so _id breaks generatedAt ties.
	findOptions := options.Find().SetSort(bson.D{{Key: "generatedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.PendingWorkoutPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update applies u atomically. ExpectStatus becomes part of the filter, so of two racing
// decisions only the first one matches.
func (r *mongoPlanRepository) Update(ctx context.Context, id string, u domain.PlanUpdate) (*domain.PendingWorkoutPlan, error) {
	set := bson.M{}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.TrainerNotes != nil {
		set["trainerNotes"] = *u.TrainerNotes
	}
	if u.ApprovedAt != nil {
		set["approvedAt"] = u.ApprovedAt.UTC()
	}

	filter := bson.M{"_id": id}
	if u.ExpectStatus != nil {
		filter["status"] = *u.ExpectStatus
	}

	var plan domain.PendingWorkoutPlan
	var err error
	if len(set) == 0 {
		err = r.collection.FindOne(ctx, filter).Decode(&plan)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&plan)
	}
	if err == nil {
		return &plan, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if u.ExpectStatus == nil {
		return nil, repository.ErrNotFound
	}

	// Distinguish an unknown id from a lost race.
	count, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, cerr
	}
	if count == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConflict
}

// EnsurePlanIndexes creates the owner and trainer dashboard indexes.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userEmailKey", Value: 1}, {Key: "generatedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedTrainerKey", Value: 1}, {Key: "status", Value: 1}, {Key: "generatedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
