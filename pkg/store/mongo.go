package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// MongoStore backs the store with MongoDB for shared deployments where
// several instances serve the same plant database.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	limits plant.Limits
}

// MongoConfig holds connection settings for a Mongo store.
type MongoConfig struct {
	URI        string
	Database   string // default "carecard"
	Collection string // default "plants"

	// Limits applied before every write; nil falls back to the defaults.
	Limits plant.Limits
}

// caseInsensitive matches scientific names regardless of letter case.
var caseInsensitive = options.Collation{Locale: "en", Strength: 2}

// plantDoc is the stored document shape.
type plantDoc struct {
	ScientificName string    `bson:"scientific_name"`
	CommonName     string    `bson:"common_name"`
	Description    string    `bson:"description"`
	Light          string    `bson:"light"`
	Water          string    `bson:"water"`
	Feeding        string    `bson:"feeding"`
	Temperature    string    `bson:"temperature"`
	Humidity       string    `bson:"humidity"`
	Toxicity       string    `bson:"toxicity"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d plantDoc) record() plant.Record {
	return plant.Record{
		ScientificName: d.ScientificName,
		CommonName:     d.CommonName,
		Description:    d.Description,
		Light:          d.Light,
		Water:          d.Water,
		Feeding:        d.Feeding,
		Temperature:    d.Temperature,
		Humidity:       d.Humidity,
		Toxicity:       d.Toxicity,
	}
}

// OpenMongo connects to MongoDB and prepares the plants collection with a
// unique, case-insensitive index on the scientific name.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "carecard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "plants"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "scientific_name", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetCollation(&caseInsensitive),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create name index")
	}

	return &MongoStore{client: client, coll: coll, limits: cfg.Limits}, nil
}

// Get returns the record matching the name case-insensitively.
func (s *MongoStore) Get(ctx context.Context, scientificName string) (*plant.Record, error) {
	var doc plantDoc
	err := s.coll.FindOne(ctx,
		bson.M{"scientific_name": scientificName},
		options.FindOne().SetCollation(&caseInsensitive),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodePlantNotFound, "plant %q not found", scientificName)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query plant")
	}
	rec := doc.record()
	return &rec, nil
}

// Upsert replaces the document keyed by scientific name, applying field
// limits first. The unique collated index serializes concurrent writers on
// the same name.
func (s *MongoStore) Upsert(ctx context.Context, rec plant.Record) error {
	limited, err := limit(rec, s.limits)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.coll.UpdateOne(ctx,
		bson.M{"scientific_name": limited.ScientificName},
		bson.M{
			"$set": bson.M{
				"scientific_name": limited.ScientificName,
				"common_name":     limited.CommonName,
				"description":     limited.Description,
				"light":           limited.Light,
				"water":           limited.Water,
				"feeding":         limited.Feeding,
				"temperature":     limited.Temperature,
				"humidity":        limited.Humidity,
				"toxicity":        limited.Toxicity,
				"updated_at":      now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true).SetCollation(&caseInsensitive))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "upsert plant")
	}
	return nil
}

// Delete removes a record; deleting an absent record is a no-op.
func (s *MongoStore) Delete(ctx context.Context, scientificName string) error {
	_, err := s.coll.DeleteOne(ctx,
		bson.M{"scientific_name": scientificName},
		options.Delete().SetCollation(&caseInsensitive))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete plant")
	}
	return nil
}

// List returns all records, newest first.
func (s *MongoStore) List(ctx context.Context) ([]plant.Record, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list plants")
	}
	defer cur.Close(ctx)

	var records []plant.Record
	for cur.Next(ctx) {
		var doc plantDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode plant")
		}
		records = append(records, doc.record())
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate plants")
	}
	return records, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
