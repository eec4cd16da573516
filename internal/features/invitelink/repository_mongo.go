package invitelink

import (
	"context"
	"errors"
	"time"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInviteLinkRepository struct {
	collection *mongo.Collection
}

func NewMongoInviteLinkRepository(db *database.MongodbDB) *MongoInviteLinkRepository {
	return &MongoInviteLinkRepository{
		collection: db.DB.Collection("invite_links"),
	}
}

func (r *MongoInviteLinkRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "group_id", Value: 1}},
		},
	})
	return err
}

func (r *MongoInviteLinkRepository) Insert(ctx context.Context, l *InviteLink) error {
	if _, err := r.collection.InsertOne(ctx, l); err != nil {
		return apperror.Internal("insert invite link", err)
	}
	return nil
}

func (r *MongoInviteLinkRepository) FindByID(ctx context.Context, id string) (*InviteLink, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoInviteLinkRepository) FindByToken(ctx context.Context, token string) (*InviteLink, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *MongoInviteLinkRepository) findOne(ctx context.Context, filter bson.M) (*InviteLink, error) {
	var l InviteLink
	err := r.collection.FindOne(ctx, filter).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find invite link", err)
	}
	return &l, nil
}

func (r *MongoInviteLinkRepository) FindActiveByGroup(ctx context.Context, groupID string) ([]InviteLink, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID, "is_active": true}, opts)
	if err != nil {
		return nil, apperror.Internal("list invite links", err)
	}
	defer cursor.Close(ctx)

	links := []InviteLink{}
	if err := cursor.All(ctx, &links); err != nil {
		return nil, apperror.Internal("decode invite links", err)
	}
	return links, nil
}

// Redeem increments uses in one conditional update. The filter carries every
// guard, so the count can never pass max_uses however many redemptions race.
func (r *MongoInviteLinkRepository) Redeem(ctx context.Context, id string, now time.Time) (bool, error) {
	filter := bson.M{
		"_id":        id,
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
		"$or": []bson.M{
			{"max_uses": nil},
			{"$expr": bson.M{"$lt": bson.A{"$uses", "$max_uses"}}},
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"uses": 1}})
	if err != nil {
		return false, apperror.Internal("redeem invite link", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoInviteLinkRepository) Release(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "uses": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"uses": -1}},
	)
	if err != nil {
		return apperror.Internal("release invite link use", err)
	}
	return nil
}

func (r *MongoInviteLinkRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return apperror.Internal("deactivate invite link", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("invite link not found")
	}
	return nil
}
