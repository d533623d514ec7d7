package templates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clinicq/internal/constants"
)

type Repository interface {
	CreateTemplate(ctx context.Context, tmpl *Template) error
	ListTemplates(ctx context.Context, queueID string) ([]Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
	UpdateTemplate(ctx context.Context, tmpl *Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection(constants.TemplateCollection),
	}
}

func (r *mongoRepository) CreateTemplate(ctx context.Context, tmpl *Template) error {
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	now := time.Now()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, tmpl)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

func (r *mongoRepository) GetTemplate(ctx context.Context, id string) (*Template, error) {
	filter := bson.M{"_id": id}

	var tmpl Template
	err := r.collection.FindOne(ctx, filter).Decode(&tmpl)
	if err == mongo.ErrNoDocuments {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &tmpl, nil
}

func (r *mongoRepository) ListTemplates(ctx context.Context, queueID string) ([]Template, error) {
	filter := bson.M{}
	if queueID != "" {
		filter["queue_id"] = queueID
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer cursor.Close(ctx)

	var tmpls []Template
	if err := cursor.All(ctx, &tmpls); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}

	return tmpls, nil
}

func (r *mongoRepository) UpdateTemplate(ctx context.Context, tmpl *Template) error {
	tmpl.UpdatedAt = time.Now()

	filter := bson.M{"_id": tmpl.ID}
	update := bson.M{"$set": tmpl}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("template not found")
	}

	return nil
}

func (r *mongoRepository) DeleteTemplate(ctx context.Context, id string) error {
	filter := bson.M{"_id": id}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("template not found")
	}

	return nil
}
