package repository

import (
	"context"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepository implements BookingRepository over a bookings
// collection. It is the default booking sink.
type MongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates a new booking repository
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	collection := db.Collection("bookings")

	// Confirmation codes are provider-scoped, index both together
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "confirmationCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	statusIndex := mongo.IndexModel{
		Keys: bson.M{"status": 1},
	}
	collection.Indexes().CreateOne(ctx, statusIndex)

	return &MongoBookingRepository{
		collection: collection,
	}
}

// Save upserts a booking record keyed by its identifier
func (r *MongoBookingRepository) Save(ctx context.Context, booking *entity.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = booking.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": booking.ID}
	_, err := r.collection.ReplaceOne(ctx, filter, booking, opts)
	return err
}

// FindByID finds a booking by its identifier
func (r *MongoBookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus transitions the stored record's lifecycle status
func (r *MongoBookingRepository) UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		}},
	)
	return err
}
