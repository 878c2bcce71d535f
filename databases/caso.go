package databases

// go generate: mockery --name CasoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontolegal/odontolegal-api/models"
)

const casoName = "casos"

// CasoDatabase contains the methods to use with the caso database
type CasoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Caso, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Caso, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type casoDatabase struct {
	db DatabaseHelper
}

// NewCasoDatabase initializes a new instance of caso database with the provided db connection
func NewCasoDatabase(db DatabaseHelper) CasoDatabase {
	return &casoDatabase{
		db: db,
	}
}

func (c *casoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Caso, error) {
	caso := &models.Caso{}
	err := c.db.Collection(casoName).FindOne(ctx, filter, opts...).Decode(&caso)
	if err != nil {
		return nil, err
	}
	return caso, nil
}

func (c *casoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Caso, error) {
	var casos []models.Caso
	cur, err := c.db.Collection(casoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&casos)
	if err != nil {
		return nil, err
	}
	return casos, nil
}

func (c *casoDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(casoName).InsertOne(ctx, document, opts...)
}

func (c *casoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(casoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *casoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(casoName).DeleteOne(ctx, filter, opts...)
}

func (c *casoDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(casoName).CountDocuments(ctx, filter, opts...)
}
