package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adityaaj2003/tunegan/pkg/errors"
)

// Mongo collection layout.
const (
	defaultDatabase  = "tunegan"
	tracksCollection = "tracks"
	mongoConnectWait = 10 * time.Second
)

// MongoStore persists tracks in a MongoDB collection. Track IDs are stored
// as their string form in _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings the server.
// An empty database name uses "tunegan".
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = defaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectWait)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(tracksCollection),
	}, nil
}

// mongoTrack is the BSON document shape. The UUID is flattened to a string
// so documents stay readable in mongosh.
type mongoTrack struct {
	ID         string    `bson:"_id"`
	Prompt     string    `bson:"prompt"`
	Duration   int       `bson:"duration"`
	SampleRate int       `bson:"sample_rate"`
	Seed       uint64    `bson:"seed"`
	ScoreHash  string    `bson:"score_hash"`
	Size       int64     `bson:"size"`
	Path       string    `bson:"path"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toDocument(t *Track) mongoTrack {
	return mongoTrack{
		ID:         t.ID.String(),
		Prompt:     t.Prompt,
		Duration:   t.Duration,
		SampleRate: t.SampleRate,
		Seed:       t.Seed,
		ScoreHash:  t.ScoreHash,
		Size:       t.Size,
		Path:       t.Path,
		CreatedAt:  t.CreatedAt,
	}
}

func fromDocument(d mongoTrack) (*Track, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse track id %q: %w", d.ID, err)
	}
	return &Track{
		ID:         id,
		Prompt:     d.Prompt,
		Duration:   d.Duration,
		SampleRate: d.SampleRate,
		Seed:       d.Seed,
		ScoreHash:  d.ScoreHash,
		Size:       d.Size,
		Path:       d.Path,
		CreatedAt:  d.CreatedAt,
	}, nil
}

// Put inserts or replaces a track.
func (s *MongoStore) Put(ctx context.Context, track *Track) error {
	doc := toDocument(track)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store track")
	}
	return nil
}

// Get fetches a track by ID.
func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (*Track, error) {
	var doc mongoTrack
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetch track")
	}
	return fromDocument(doc)
}

// List returns all tracks, newest first.
func (s *MongoStore) List(ctx context.Context) ([]*Track, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list tracks")
	}
	defer cur.Close(ctx)

	var out []*Track
	for cur.Next(ctx) {
		var doc mongoTrack
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode track")
		}
		t, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "iterate tracks")
	}
	return out, nil
}

// Delete removes a track.
func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete track")
	}
	if res.DeletedCount == 0 {
		return ErrTrackNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
