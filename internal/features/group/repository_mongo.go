package group

import (
	"context"
	"errors"
	"time"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoGroupRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoGroupRepository(db *database.MongodbDB) *MongoGroupRepository {
	return &MongoGroupRepository{
		db:         db.DB,
		collection: db.DB.Collection("groups"),
	}
}

func (r *MongoGroupRepository) Insert(ctx context.Context, g *Group) error {
	if _, err := r.collection.InsertOne(ctx, g); err != nil {
		return apperror.Internal("insert group", err)
	}
	return nil
}

func (r *MongoGroupRepository) FindByID(ctx context.Context, id string) (*Group, error) {
	var g Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find group", err)
	}
	return &g, nil
}

func (r *MongoGroupRepository) UpdateFields(ctx context.Context, id string, name, description *string) error {
	set := bson.M{"updated_at": time.Now()}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperror.Internal("update group", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("group not found")
	}
	return nil
}

// DeleteCascade removes the dependent collections first and the group
// document last, so an interrupted cascade is completed by retrying the
// delete rather than leaving orphaned children behind a missing group.
func (r *MongoGroupRepository) DeleteCascade(ctx context.Context, id string) error {
	byGroup := bson.M{"group_id": id}
	for _, name := range []string{"invite_links", "invitations", "group_members"} {
		if _, err := r.db.Collection(name).DeleteMany(ctx, byGroup); err != nil {
			return apperror.Internal("cascade delete "+name, err)
		}
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Internal("delete group", err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("group not found")
	}
	return nil
}
