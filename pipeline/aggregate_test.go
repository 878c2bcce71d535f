package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odontolegal/odontolegal-api/databases/mocks"
	"github.com/odontolegal/odontolegal-api/models"
	"github.com/odontolegal/odontolegal-api/pipeline"
)

func TestAggregator_LaudoSnapshot(t *testing.T) {
	vID := primitive.NewObjectID()
	cID := primitive.NewObjectID()
	pID := primitive.NewObjectID()
	coletorID := primitive.NewObjectID()

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Vitima{ID: vID, Nome: "Maria", CasoID: cID.Hex()}, nil)

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Caso{ID: cID, Titulo: "Caso"}, nil)

	peritoDB := &mocks.PeritoDatabase{}
	peritoDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Perito{ID: pID, Nome: "Dr. Silva"}, nil)
	peritoDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.Perito{{ID: coletorID, Nome: "Dra. Costa"}}, nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.Evidencia{
			{ID: primitive.NewObjectID(), Tipo: models.EvidenciaTipoTexto, Texto: "obs", ColetadoPor: coletorID.Hex()},
		}, nil)

	agg := pipeline.Aggregator{
		Casos: casoDB, Vitimas: vitimaDB, Evidencias: evidenciaDB, Peritos: peritoDB,
	}

	snap, err := agg.LaudoSnapshot(context.Background(), vID.Hex(), pID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, "Maria", snap.Vitima.Nome)
	assert.Equal(t, "Dr. Silva", snap.Perito.Nome)
	assert.Len(t, snap.Evidencias, 1)
	assert.Equal(t, "Dra. Costa", snap.Coletores[coletorID.Hex()])
}

func TestAggregator_LaudoSnapshotVitimaNotFound(t *testing.T) {
	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	agg := pipeline.Aggregator{Vitimas: vitimaDB}

	_, err := agg.LaudoSnapshot(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, pipeline.ErrVitimaNaoEncontrada)
}

func TestAggregator_LaudoSnapshotVitimaSemCaso(t *testing.T) {
	vID := primitive.NewObjectID()

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Vitima{ID: vID, CasoID: ""}, nil)

	agg := pipeline.Aggregator{Vitimas: vitimaDB}

	_, err := agg.LaudoSnapshot(context.Background(), vID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, pipeline.ErrVitimaSemCaso)
}

func TestAggregator_LaudoSnapshotSemEvidencias(t *testing.T) {
	vID := primitive.NewObjectID()
	cID := primitive.NewObjectID()
	pID := primitive.NewObjectID()

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Vitima{ID: vID, CasoID: cID.Hex()}, nil)

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Caso{ID: cID}, nil)

	peritoDB := &mocks.PeritoDatabase{}
	peritoDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Perito{ID: pID}, nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("Find", mock.Anything, mock.Anything).Return([]models.Evidencia{}, nil)

	agg := pipeline.Aggregator{Casos: casoDB, Vitimas: vitimaDB, Evidencias: evidenciaDB, Peritos: peritoDB}

	_, err := agg.LaudoSnapshot(context.Background(), vID.Hex(), pID.Hex())
	assert.ErrorIs(t, err, pipeline.ErrSemEvidencias)
}

func TestAggregator_RelatorioSnapshot(t *testing.T) {
	cID := primitive.NewObjectID()
	v1 := primitive.NewObjectID()
	v2 := primitive.NewObjectID()

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Caso{ID: cID}, nil)

	// two evidence items for the same victim must not duplicate the victim
	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.Evidencia{
			{ID: primitive.NewObjectID(), VitimaID: v1.Hex()},
			{ID: primitive.NewObjectID(), VitimaID: v1.Hex()},
			{ID: primitive.NewObjectID(), VitimaID: v2.Hex()},
		}, nil)

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.Vitima{{ID: v1}, {ID: v2}}, nil)

	laudoDB := &mocks.LaudoDatabase{}
	laudoDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.Laudo{{ID: primitive.NewObjectID(), VitimaID: v1.Hex()}}, nil)

	agg := pipeline.Aggregator{
		Casos: casoDB, Vitimas: vitimaDB, Evidencias: evidenciaDB, Laudos: laudoDB,
	}

	snap, err := agg.RelatorioSnapshot(context.Background(), cID.Hex())
	assert.NoError(t, err)
	assert.Len(t, snap.Evidencias, 3)
	assert.Len(t, snap.Vitimas, 2)
	assert.Len(t, snap.Laudos, 1)
}

func TestAggregator_RelatorioSnapshotCasoNotFound(t *testing.T) {
	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	agg := pipeline.Aggregator{Casos: casoDB}

	_, err := agg.RelatorioSnapshot(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, pipeline.ErrCasoNaoEncontrado)
}
