package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clinicq/internal/constants"
)

func EnsureMongoCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(constants.TemplateCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "queue_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_message_templates_queue_updated"),
		},
		{
			Keys:    bson.D{{Key: "queue_id", Value: 1}, {Key: "enabled", Value: 1}},
			Options: options.Index().SetName("idx_message_templates_queue_enabled"),
		},
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetName("idx_message_templates_title"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
