package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface on MongoDB
type RecipeRepository struct {
	coll *mongo.Collection
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *Database) *RecipeRepository {
	return &RecipeRepository{coll: db.Collection(recipesCollection)}
}

// Create inserts the recipe and writes the generated id back
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	doc := RecipeToDocument(rec)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	rec.ID = doc.ID.Hex()
	return nil
}

// Update replaces the whole document
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	id, err := primitive.ObjectIDFromHex(rec.ID)
	if err != nil {
		return recipe.ErrRecipeNotFound
	}
	doc := RecipeToDocument(rec)

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace recipe: %w", err)
	}
	if result.MatchedCount == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// Delete deletes a recipe by ID
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return recipe.ErrRecipeNotFound
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if result.DeletedCount == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, recipe.ErrRecipeNotFound
	}

	var doc RecipeDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return DocumentToRecipe(&doc), nil
}

// List searches title and description case-insensitively, newest first
func (r *RecipeRepository) List(ctx context.Context, criteria outbound.ListCriteria) ([]*recipe.Recipe, int64, error) {
	filter := listFilter(criteria)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(criteria.Offset))
	if criteria.Limit > 0 {
		opts.SetLimit(int64(criteria.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []RecipeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode recipes: %w", err)
	}

	recipes := make([]*recipe.Recipe, len(docs))
	for i := range docs {
		recipes[i] = DocumentToRecipe(&docs[i])
	}
	return recipes, total, nil
}

func listFilter(criteria outbound.ListCriteria) bson.M {
	filter := bson.M{}
	if criteria.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(criteria.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
		}
	}
	if criteria.Tag != "" {
		filter["tags"] = criteria.Tag
	}
	return filter
}

// Tags counts recipes per tag, most used first
func (r *RecipeRepository) Tags(ctx context.Context) ([]outbound.TagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate tags: %w", err)
	}
	defer cursor.Close(ctx)

	tags := []outbound.TagCount{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
