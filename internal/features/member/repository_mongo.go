package member

import (
	"context"
	"errors"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"
	"go-expense/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMemberRepository struct {
	collection *mongo.Collection
}

func NewMongoMemberRepository(db *database.MongodbDB) *MongoMemberRepository {
	return &MongoMemberRepository{
		collection: db.DB.Collection("group_members"),
	}
}

// EnsureIndexes creates the join-order index and the partial unique index
// backing the single-group-per-user invariant.
func (r *MongoMemberRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "joined_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"user_id": bson.M{"$type": "string"}}),
		},
	})
	return err
}

func (r *MongoMemberRepository) Insert(ctx context.Context, m *GroupMember) error {
	_, err := r.collection.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("user already belongs to a group")
	}
	if err != nil {
		return apperror.Internal("insert member", err)
	}
	return nil
}

func (r *MongoMemberRepository) FindByID(ctx context.Context, groupID, memberID string) (*GroupMember, error) {
	var m GroupMember
	err := r.collection.FindOne(ctx, bson.M{"_id": memberID, "group_id": groupID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find member", err)
	}
	return &m, nil
}

func (r *MongoMemberRepository) FindByUser(ctx context.Context, userID string) (*GroupMember, error) {
	var m GroupMember
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find member by user", err)
	}
	return &m, nil
}

func (r *MongoMemberRepository) FindByGroup(ctx context.Context, groupID string) ([]GroupMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, apperror.Internal("list members", err)
	}
	defer cursor.Close(ctx)

	members := []GroupMember{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, apperror.Internal("decode members", err)
	}
	return members, nil
}

func (r *MongoMemberRepository) UpdateRole(ctx context.Context, groupID, memberID string, role permission.Role) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": memberID, "group_id": groupID},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return apperror.Internal("update member role", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("member not found")
	}
	return nil
}

func (r *MongoMemberRepository) Delete(ctx context.Context, groupID, memberID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": memberID, "group_id": groupID})
	if err != nil {
		return apperror.Internal("delete member", err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("member not found")
	}
	return nil
}

func (r *MongoMemberRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, apperror.Internal("count members", err)
	}
	return n, nil
}
