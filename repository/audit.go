package repository

import (
	"context"
	"time"

	"storepay/database"
	"storepay/helper"
	"storepay/lib"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	auditDatabase   = "storepay"
	auditCollection = "processor_events"
)

// MongoRecorder implements lib.Recorder by writing one document per
// processor call. Failures are logged, never surfaced: the audit trail must
// not break checkout.
type MongoRecorder struct {
	collection *mongo.Collection
	logger     *helper.Logger
}

func NewMongoRecorder() *MongoRecorder {
	return &MongoRecorder{
		collection: database.GetCollection(auditDatabase, auditCollection),
		logger:     helper.NewLogger("AUDIT"),
	}
}

func (r *MongoRecorder) RecordProcessorEvent(ctx context.Context, event lib.ProcessorEvent) {
	// Detached from the request context so a finished request still audits.
	insertCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(insertCtx, event); err != nil {
		r.logger.Warn("failed to record processor event: %v", err)
	}
}

// ListProcessorEvents returns the most recent audit documents for the admin
// screens, newest first.
func ListProcessorEvents(ctx context.Context, limit int64) ([]lib.ProcessorEvent, error) {
	collection := database.GetCollection(auditDatabase, auditCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []lib.ProcessorEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
