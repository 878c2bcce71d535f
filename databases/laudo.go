package databases

// go generate: mockery --name LaudoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontolegal/odontolegal-api/models"
)

const laudoName = "laudos"

// LaudoDatabase contains the methods to use with the laudo database
type LaudoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Laudo, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Laudo, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.Laudo, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type laudoDatabase struct {
	db DatabaseHelper
}

// NewLaudoDatabase initializes a new instance of laudo database with the provided db connection
func NewLaudoDatabase(db DatabaseHelper) LaudoDatabase {
	return &laudoDatabase{
		db: db,
	}
}

func (l *laudoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Laudo, error) {
	laudo := &models.Laudo{}
	err := l.db.Collection(laudoName).FindOne(ctx, filter, opts...).Decode(&laudo)
	if err != nil {
		return nil, err
	}
	return laudo, nil
}

func (l *laudoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Laudo, error) {
	var laudos []models.Laudo
	cur, err := l.db.Collection(laudoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&laudos)
	if err != nil {
		return nil, err
	}
	return laudos, nil
}

func (l *laudoDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return l.db.Collection(laudoName).InsertOne(ctx, document, opts...)
}

func (l *laudoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := l.db.Collection(laudoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// FindOneAndUpdate runs a conditional update and decodes the matched document.
// The caller distinguishes "not matched" via mongo.ErrNoDocuments.
func (l *laudoDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Laudo, error) {
	laudo := &models.Laudo{}
	err := l.db.Collection(laudoName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&laudo)
	if err != nil {
		return nil, err
	}
	return laudo, nil
}

func (l *laudoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return l.db.Collection(laudoName).DeleteOne(ctx, filter, opts...)
}

func (l *laudoDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return l.db.Collection(laudoName).CountDocuments(ctx, filter, opts...)
}
