package repository

import (
	"context"
	"errors"
	"time"

	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	"bedbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CatalogCollectionName  = "Rooms"
	PropertyCollectionName = "Properties"
	UserCollectionName     = "Users"
)

// CatalogRepository reads the per-property room layout. Catalogs are
// maintained elsewhere; bookings only read them.
type CatalogRepository interface {
	FindByProperty(ctx context.Context, propertyID string) (*model.RoomCatalog, error)
}

type PropertyRepository interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindIDsByClient(ctx context.Context, clientID string) ([]string, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type mongoCatalogRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{cfg: cfg, collection: db.Collection(CatalogCollectionName)}
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{cfg: cfg, collection: db.Collection(PropertyCollectionName)}
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{cfg: cfg, collection: db.Collection(UserCollectionName)}
}

func readContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// idFilter matches documents keyed either by ObjectID or by plain string,
// since these collections are written by other services.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func (r *mongoCatalogRepository) FindByProperty(ctx context.Context, propertyID string) (*model.RoomCatalog, error) {
	ctx, cancel := readContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var catalog model.RoomCatalog
	err := r.collection.FindOne(ctx, bson.M{"property_id": propertyID}).Decode(&catalog)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCatalogNotFound
		}
		return nil, mongotx.Classify(err, "failed to find room catalog")
	}
	return &catalog, nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := readContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var property model.Property
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPropertyNotFound
		}
		return nil, mongotx.Classify(err, "failed to find property")
	}
	return &property, nil
}

func (r *mongoPropertyRepository) FindIDsByClient(ctx context.Context, clientID string) ([]string, error) {
	ctx, cancel := readContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, mongotx.Classify(err, "failed to find client properties")
	}
	defer cursor.Close(ctx)

	var properties []model.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, mongotx.Classify(err, "failed to decode client properties")
	}

	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := readContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, mongotx.Classify(err, "failed to find user")
	}
	return &user, nil
}
