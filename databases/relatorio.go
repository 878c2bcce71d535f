package databases

// go generate: mockery --name RelatorioDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontolegal/odontolegal-api/models"
)

const relatorioName = "relatorios"

// RelatorioDatabase contains the methods to use with the relatorio database
type RelatorioDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Relatorio, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Relatorio, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.Relatorio, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type relatorioDatabase struct {
	db DatabaseHelper
}

// NewRelatorioDatabase initializes a new instance of relatorio database with the provided db connection
func NewRelatorioDatabase(db DatabaseHelper) RelatorioDatabase {
	return &relatorioDatabase{
		db: db,
	}
}

func (r *relatorioDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Relatorio, error) {
	relatorio := &models.Relatorio{}
	err := r.db.Collection(relatorioName).FindOne(ctx, filter, opts...).Decode(&relatorio)
	if err != nil {
		return nil, err
	}
	return relatorio, nil
}

func (r *relatorioDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Relatorio, error) {
	var relatorios []models.Relatorio
	cur, err := r.db.Collection(relatorioName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&relatorios)
	if err != nil {
		return nil, err
	}
	return relatorios, nil
}

func (r *relatorioDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return r.db.Collection(relatorioName).InsertOne(ctx, document, opts...)
}

func (r *relatorioDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := r.db.Collection(relatorioName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// FindOneAndUpdate runs a conditional update and decodes the matched document.
// The caller distinguishes "not matched" via mongo.ErrNoDocuments.
func (r *relatorioDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Relatorio, error) {
	relatorio := &models.Relatorio{}
	err := r.db.Collection(relatorioName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&relatorio)
	if err != nil {
		return nil, err
	}
	return relatorio, nil
}

func (r *relatorioDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return r.db.Collection(relatorioName).DeleteOne(ctx, filter, opts...)
}

func (r *relatorioDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(relatorioName).CountDocuments(ctx, filter, opts...)
}
