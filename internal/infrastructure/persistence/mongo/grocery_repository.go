package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
)

// GroceryRepository implements the shopping list on MongoDB
type GroceryRepository struct {
	coll *mongo.Collection
}

// NewGroceryRepository creates a new grocery repository
func NewGroceryRepository(db *Database) *GroceryRepository {
	return &GroceryRepository{coll: db.Collection(groceryCollection)}
}

var insertionOrder = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// List returns the items passing filter in insertion order
func (r *GroceryRepository) List(ctx context.Context, filter grocery.Filter) ([]*grocery.Item, error) {
	query := bson.M{}
	if filter.Purchased != nil {
		query["purchased"] = *filter.Purchased
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, fmt.Errorf("find grocery items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []GroceryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode grocery items: %w", err)
	}

	items := make([]*grocery.Item, len(docs))
	for i := range docs {
		items[i] = DocumentToGrocery(&docs[i])
	}
	return items, nil
}

// FindByID returns one item
func (r *GroceryRepository) FindByID(ctx context.Context, id string) (*grocery.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, grocery.ErrItemNotFound
	}
	var doc GroceryDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, grocery.ErrItemNotFound
		}
		return nil, fmt.Errorf("find grocery item: %w", err)
	}
	return DocumentToGrocery(&doc), nil
}

// Merge is a single upsert: the oldest unpurchased item with the same
// merge key gets its quantity incremented with $inc, or a new document is
// inserted with a freshly generated id. Comparing the returned id with
// the proposed one tells the two cases apart.
func (r *GroceryRepository) Merge(ctx context.Context, item *grocery.Item) (*grocery.Item, bool, error) {
	doc := GroceryToDocument(item)
	proposed := primitive.NewObjectID()

	filter := bson.M{
		"nameKey":   doc.NameKey,
		"unitKey":   doc.UnitKey,
		"purchased": false,
	}
	update := bson.M{
		"$inc": bson.M{"quantity": doc.Quantity},
		"$set": bson.M{"updatedAt": doc.UpdatedAt},
		"$setOnInsert": bson.M{
			"_id":                proposed,
			"ingredientName":     doc.IngredientName,
			"unit":               doc.Unit,
			"packageDescription": doc.PackageDescription,
			"category":           doc.Category,
			"sourceRecipeId":     doc.SourceRecipeID,
			"createdAt":          doc.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(insertionOrder).
		SetReturnDocument(options.After)

	var stored GroceryDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, false, fmt.Errorf("merge grocery item: %w", err)
	}
	return DocumentToGrocery(&stored), stored.ID != proposed, nil
}

// Update replaces a stored item
func (r *GroceryRepository) Update(ctx context.Context, item *grocery.Item) error {
	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return grocery.ErrItemNotFound
	}
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, GroceryToDocument(item))
	if err != nil {
		return fmt.Errorf("replace grocery item: %w", err)
	}
	if result.MatchedCount == 0 {
		return grocery.ErrItemNotFound
	}
	return nil
}

// Delete removes one item
func (r *GroceryRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return grocery.ErrItemNotFound
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete grocery item: %w", err)
	}
	if result.DeletedCount == 0 {
		return grocery.ErrItemNotFound
	}
	return nil
}

// DeletePurchased removes every purchased item
func (r *GroceryRepository) DeletePurchased(ctx context.Context) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"purchased": true})
	if err != nil {
		return 0, fmt.Errorf("delete purchased items: %w", err)
	}
	return result.DeletedCount, nil
}
