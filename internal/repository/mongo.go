package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chucky-1/teadiary/internal/model"
)

const eventsCollection = "bot_events"

type eventDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	TS     time.Time          `bson:"ts"`
	UserID *int64             `bson:"user_id,omitempty"`
	ChatID *int64             `bson:"chat_id,omitempty"`
	Event  string             `bson:"event"`
	Props  map[string]any     `bson:"props"`
}

// Mongo stores analytics events when MONGO_URI is configured.
type Mongo struct {
	cli      *mongo.Client
	database string
}

func NewMongo(cli *mongo.Client, database string) *Mongo {
	return &Mongo{
		cli:      cli,
		database: database,
	}
}

func (m *Mongo) collection() *mongo.Collection {
	return m.cli.Database(m.database).Collection(eventsCollection)
}

// EnsureIndexes mirrors the sql indexes of bot_events.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ts", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "event", Value: 1}, {Key: "ts", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo couldn't CreateMany indexes: %v", err)
	}
	return nil
}

func (m *Mongo) AddEvent(ctx context.Context, e *model.Event) error {
	doc := eventDocument{
		TS:     e.TS.UTC(),
		UserID: e.UserID,
		ChatID: e.ChatID,
		Event:  e.Event,
		Props:  eventProps(e),
	}
	if _, err := m.collection().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo couldn't InsertOne in AddEvent method: %v", err)
	}
	return nil
}

func (m *Mongo) EventStats(ctx context.Context, from, to time.Time) (*model.DayStats, error) {
	window := bson.D{{Key: "ts", Value: bson.D{{Key: "$gte", Value: from.UTC()}, {Key: "$lt", Value: to.UTC()}}}}

	users, err := m.collection().Distinct(ctx, "user_id", window)
	if err != nil {
		return nil, fmt.Errorf("mongo couldn't Distinct in EventStats method: %v", err)
	}
	stats := &model.DayStats{DAU: int64(len(users))}

	for event, dst := range map[string]*int64{
		model.EventNewTastingStarted: &stats.Started,
		model.EventTastingSaved:      &stats.Saved,
	} {
		filter := append(bson.D{{Key: "event", Value: event}}, window...)
		n, err := m.collection().CountDocuments(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("mongo couldn't CountDocuments in EventStats method: %v", err)
		}
		*dst = n
	}
	return stats, nil
}
