package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltmart/storefront/internal/core/domain"
)

const cartsCollection = "carts"

// MongoCartRepository stores one cart document per user, keyed by user_id.
// Writes replace the whole document; concurrent writers are last-write-wins.
type MongoCartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{coll: db.Collection(cartsCollection)}
}

type mongoCart struct {
	UserID      string            `bson:"user_id"`
	Items       []domain.CartItem `bson:"items"`
	TotalAmount float64           `bson:"total_amount"`
	UpdatedAt   int64             `bson:"updated_at"`
}

func (r *MongoCartRepository) FindByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	var mc mongoCart
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	return &domain.Cart{
		UserID:      mc.UserID,
		Items:       mc.Items,
		TotalAmount: mc.TotalAmount,
		UpdatedAt:   unixToTime(mc.UpdatedAt),
	}, nil
}

func (r *MongoCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	doc := mongoCart{
		UserID:      cart.UserID,
		Items:       cart.Items,
		TotalAmount: cart.TotalAmount,
		UpdatedAt:   cart.UpdatedAt.Unix(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": cart.UserID}, doc, opts); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *MongoCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}
