package databases

// go generate: mockery --name PeritoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontolegal/odontolegal-api/models"
)

const peritoName = "peritos"

// PeritoDatabase contains the methods to use with the perito database
type PeritoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Perito, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Perito, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type peritoDatabase struct {
	db DatabaseHelper
}

// NewPeritoDatabase initializes a new instance of perito database with the provided db connection
func NewPeritoDatabase(db DatabaseHelper) PeritoDatabase {
	return &peritoDatabase{
		db: db,
	}
}

func (p *peritoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Perito, error) {
	perito := &models.Perito{}
	err := p.db.Collection(peritoName).FindOne(ctx, filter, opts...).Decode(&perito)
	if err != nil {
		return nil, err
	}
	return perito, nil
}

func (p *peritoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Perito, error) {
	var peritos []models.Perito
	cur, err := p.db.Collection(peritoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&peritos)
	if err != nil {
		return nil, err
	}
	return peritos, nil
}

func (p *peritoDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return p.db.Collection(peritoName).InsertOne(ctx, document, opts...)
}

func (p *peritoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := p.db.Collection(peritoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (p *peritoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return p.db.Collection(peritoName).DeleteOne(ctx, filter, opts...)
}

func (p *peritoDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return p.db.Collection(peritoName).CountDocuments(ctx, filter, opts...)
}
