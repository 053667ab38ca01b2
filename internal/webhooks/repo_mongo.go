package webhooks

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names are the pluralized model names existing data lives under.
const (
	MongoMissedCallsCollection = "missedcalls"
	MongoSMSCollection         = "smsmessages"
)

// MongoRepo stores webhook documents in MongoDB, one collection per kind.
type MongoRepo struct {
	missed *mongo.Collection
	sms    *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		missed: db.Collection(MongoMissedCallsCollection),
		sms:    db.Collection(MongoSMSCollection),
	}
}

// EnsureIndexes adds a createdAt index so List can sort without a collection scan.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: 1}}}
	if _, err := r.missed.Indexes().CreateOne(ctx, idx); err != nil {
		return err
	}
	_, err := r.sms.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *MongoRepo) InsertMissedCall(ctx context.Context, m MissedCall) error {
	_, err := r.missed.InsertOne(ctx, m)
	return err
}

func (r *MongoRepo) ListMissedCalls(ctx context.Context) ([]MissedCall, error) {
	out := []MissedCall{}
	if err := findAll(ctx, r.missed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) InsertSMS(ctx context.Context, m SMSMessage) error {
	_, err := r.sms.InsertOne(ctx, m)
	return err
}

func (r *MongoRepo) ListSMS(ctx context.Context) ([]SMSMessage, error) {
	out := []SMSMessage{}
	if err := findAll(ctx, r.sms, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, dst any) error {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, dst)
}
