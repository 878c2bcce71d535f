package databases

// go generate: mockery --name VitimaDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontolegal/odontolegal-api/models"
)

const vitimaName = "vitimas"

// VitimaDatabase contains the methods to use with the vitima database
type VitimaDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Vitima, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Vitima, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type vitimaDatabase struct {
	db DatabaseHelper
}

// NewVitimaDatabase initializes a new instance of vitima database with the provided db connection
func NewVitimaDatabase(db DatabaseHelper) VitimaDatabase {
	return &vitimaDatabase{
		db: db,
	}
}

func (v *vitimaDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Vitima, error) {
	vitima := &models.Vitima{}
	err := v.db.Collection(vitimaName).FindOne(ctx, filter, opts...).Decode(&vitima)
	if err != nil {
		return nil, err
	}
	return vitima, nil
}

func (v *vitimaDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vitima, error) {
	var vitimas []models.Vitima
	cur, err := v.db.Collection(vitimaName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&vitimas)
	if err != nil {
		return nil, err
	}
	return vitimas, nil
}

func (v *vitimaDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return v.db.Collection(vitimaName).InsertOne(ctx, document, opts...)
}

func (v *vitimaDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := v.db.Collection(vitimaName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (v *vitimaDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return v.db.Collection(vitimaName).DeleteOne(ctx, filter, opts...)
}

func (v *vitimaDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return v.db.Collection(vitimaName).CountDocuments(ctx, filter, opts...)
}
