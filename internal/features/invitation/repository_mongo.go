package invitation

import (
	"context"
	"errors"

	"go-expense/internal/common/apperror"
	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInvitationRepository struct {
	collection *mongo.Collection
}

func NewMongoInvitationRepository(db *database.MongodbDB) *MongoInvitationRepository {
	return &MongoInvitationRepository{
		collection: db.DB.Collection("invitations"),
	}
}

// EnsureIndexes creates the token lookup index and the partial unique index
// that makes the duplicate-PENDING check atomic with the insert.
func (r *MongoInvitationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(StatusPending)}),
		},
	})
	return err
}

func (r *MongoInvitationRepository) Insert(ctx context.Context, inv *Invitation) error {
	_, err := r.collection.InsertOne(ctx, inv)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("a pending invitation already exists for this email")
	}
	if err != nil {
		return apperror.Internal("insert invitation", err)
	}
	return nil
}

func (r *MongoInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	var inv Invitation
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("find invitation", err)
	}
	return &inv, nil
}

func (r *MongoInvitationRepository) FindPendingByGroup(ctx context.Context, groupID string) ([]Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID, "status": StatusPending}, opts)
	if err != nil {
		return nil, apperror.Internal("list invitations", err)
	}
	defer cursor.Close(ctx)

	invitations := []Invitation{}
	if err := cursor.All(ctx, &invitations); err != nil {
		return nil, apperror.Internal("decode invitations", err)
	}
	return invitations, nil
}

func (r *MongoInvitationRepository) UpdateStatus(ctx context.Context, id string, from, to InvitationStatus) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, apperror.Internal("update invitation status", err)
	}
	return res.MatchedCount == 1, nil
}
