package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCollection[T any] struct {
	collection *mongo.Collection
}

func NewMongoCollection[T any](db *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{collection: db.Collection(name)}
}

// mongoField maps the public id column onto the document key.
func mongoField(column string) string {
	if column == "id" {
		return "_id"
	}
	return column
}

func mongoFilter(filters []Filter) bson.M {
	filter := bson.M{}
	for _, f := range filters {
		filter[mongoField(f.Column)] = f.Value
	}
	return filter
}

func (c *MongoCollection[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	findOptions := options.Find()
	if opts.Order != nil {
		direction := -1
		if opts.Order.Ascending {
			direction = 1
		}
		findOptions.SetSort(bson.D{{Key: mongoField(opts.Order.Column), Value: direction}})
	}

	cursor, err := c.collection.Find(ctx, mongoFilter(opts.Filters), findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", c.collection.Name(), err)
	}
	defer cursor.Close(ctx)

	records := make([]T, 0)
	for cursor.Next(ctx) {
		var record T
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", c.collection.Name(), err)
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}

func (c *MongoCollection[T]) Get(ctx context.Context, id models.ID) (*T, error) {
	var record T
	err := c.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", c.collection.Name(), id, err)
	}
	return &record, nil
}

func (c *MongoCollection[T]) Insert(ctx context.Context, record *T) (*T, error) {
	if _, err := c.collection.InsertOne(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", c.collection.Name(), err)
	}
	return record, nil
}

func (c *MongoCollection[T]) Update(ctx context.Context, id models.ID, patch models.Patch) (*T, error) {
	set := bson.M{}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = v
	}

	var record T
	err := c.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", c.collection.Name(), id, err)
	}
	return &record, nil
}

func (c *MongoCollection[T]) Delete(ctx context.Context, id models.ID) error {
	result, err := c.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", c.collection.Name(), id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

func (c *MongoCollection[T]) DeleteAll(ctx context.Context) error {
	if _, err := c.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.collection.Name(), err)
	}
	return nil
}

// OpenMongo connects, pings and returns the stores backed by one database.
func OpenMongo(ctx context.Context, uri, dbName string) (*Stores, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s.", dbName)

	db := client.Database(dbName)
	return &Stores{
		Users:       NewMongoCollection[models.User](db, UsersCollection),
		Credentials: NewMongoCollection[models.Credential](db, CredentialsCollection),
		Tasks:       NewMongoCollection[models.Task](db, TasksCollection),
		Projects:    NewMongoCollection[models.Project](db, ProjectsCollection),
		close:       client.Disconnect,
	}, nil
}
