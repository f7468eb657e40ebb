package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

const guestSeqCounter = "guests"

type mongoGuestRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoGuestRepo creates a GuestRepository over a MongoDB collection.
// The guest id is stored as the document _id; insertion order is kept in
// seq, drawn from a counter document in counters.
func NewMongoGuestRepo(coll, counters *mongo.Collection) GuestRepository {
	return &mongoGuestRepo{coll: coll, counters: counters}
}

func (r *mongoGuestRepo) List(ctx context.Context) ([]model.Guest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	guests := make([]model.Guest, 0)
	if err := cur.All(ctx, &guests); err != nil {
		return nil, err
	}
	for i := range guests {
		normalizeTimes(&guests[i])
	}
	return guests, nil
}

func (r *mongoGuestRepo) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	var guest model.Guest
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&guest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeTimes(&guest)
	return &guest, nil
}

func (r *mongoGuestRepo) Create(ctx context.Context, guest *model.Guest) error {
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}
	guest.Seq = seq
	_, err = r.coll.InsertOne(ctx, guest)
	return err
}

func (r *mongoGuestRepo) nextSeq(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: guestSeqCounter}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *mongoGuestRepo) Update(ctx context.Context, guest *model.Guest) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: guest.ID}}, guest)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoGuestRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoGuestRepo) DeleteAll(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{})
	return err
}
