package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odontolegal/odontolegal-api/api/handlers"
	"github.com/odontolegal/odontolegal-api/databases/mocks"
	"github.com/odontolegal/odontolegal-api/models"
	"github.com/odontolegal/odontolegal-api/pipeline"
)

func relatorioGraphMocks(t *testing.T) (caso *mocks.CasoDatabase, vitima *mocks.VitimaDatabase, evidencia *mocks.EvidenciaDatabase, perito *mocks.PeritoDatabase, laudo *mocks.LaudoDatabase, casoID string) {
	t.Helper()

	cID := primitive.NewObjectID()
	vID := primitive.NewObjectID()
	pID := primitive.NewObjectID()

	caso = &mocks.CasoDatabase{}
	caso.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Caso{ID: cID, Titulo: "Caso teste", PeritoResponsavel: pID.Hex()}, nil)

	evidencia = &mocks.EvidenciaDatabase{}
	evidencia.On("Find", mock.Anything, mock.Anything).
		Return([]models.Evidencia{
			{ID: primitive.NewObjectID(), Tipo: models.EvidenciaTipoTexto, Texto: "obs", CasoID: cID.Hex(), VitimaID: vID.Hex()},
		}, nil)

	vitima = &mocks.VitimaDatabase{}
	vitima.On("Find", mock.Anything, mock.Anything).
		Return([]models.Vitima{{ID: vID, Nome: "Maria", CasoID: cID.Hex()}}, nil)

	perito = &mocks.PeritoDatabase{}
	perito.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Perito{ID: pID, Nome: "Dr. Silva"}, nil)

	laudo = &mocks.LaudoDatabase{}
	laudo.On("Find", mock.Anything, mock.Anything).Return([]models.Laudo{}, nil)

	return caso, vitima, evidencia, perito, laudo, cID.Hex()
}

func TestRelatorio_CreateRelatorioHandler(t *testing.T) {
	casoDB, vitimaDB, evidenciaDB, peritoDB, laudoDB, casoID := relatorioGraphMocks(t)

	relatorioDB := &mocks.RelatorioDatabase{}
	relatorioDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	exporter := &stubExporter{pdf: []byte("%PDF-1.4 fake")}
	rel := handlers.Relatorio{
		DB: relatorioDB, CDB: casoDB, PDB: peritoDB,
		Agg: pipeline.Aggregator{
			Casos: casoDB, Vitimas: vitimaDB, Evidencias: evidenciaDB, Peritos: peritoDB, Laudos: laudoDB,
		},
		Enricher: stubEnricher{},
		Exporter: exporter,
	}

	body, _ := json.Marshal(map[string]string{
		"casoId": casoID,
		"titulo": "Relatório do caso",
	})
	req := httptest.NewRequest("POST", "/api/v1/relatorios", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.CreateRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.RelatorioResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Relatorio.Assinado)
	assert.Equal(t, "análise gerada", resp.Relatorio.AnaliseTecnica)
	assert.NotEmpty(t, resp.PDF)
	assert.Equal(t, []string{"criar-relatorio"}, exporter.operacoes)
}

func TestRelatorio_CreateRelatorioHandlerNoEvidence(t *testing.T) {
	cID := primitive.NewObjectID()

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Caso{ID: cID}, nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("Find", mock.Anything, mock.Anything).Return([]models.Evidencia{}, nil)

	relatorioDB := &mocks.RelatorioDatabase{}
	rel := handlers.Relatorio{
		DB: relatorioDB, CDB: casoDB,
		Agg:      pipeline.Aggregator{Casos: casoDB, Evidencias: evidenciaDB},
		Enricher: stubEnricher{},
		Exporter: &stubExporter{},
	}

	body, _ := json.Marshal(map[string]string{"casoId": cID.Hex()})
	req := httptest.NewRequest("POST", "/api/v1/relatorios", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.CreateRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	relatorioDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestRelatorio_CreateRelatorioHandlerAudioURLRejected(t *testing.T) {
	rel := handlers.Relatorio{}

	body, _ := json.Marshal(map[string]string{
		"casoId":   primitive.NewObjectID().Hex(),
		"audioURL": "http://evil.example.com/audio.mp3",
	})
	req := httptest.NewRequest("POST", "/api/v1/relatorios", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.CreateRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRelatorio_CreateRelatorioHandlerAudioURLAllowed(t *testing.T) {
	casoDB, vitimaDB, evidenciaDB, peritoDB, laudoDB, casoID := relatorioGraphMocks(t)

	relatorioDB := &mocks.RelatorioDatabase{}
	relatorioDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	rel := handlers.Relatorio{
		DB: relatorioDB, CDB: casoDB, PDB: peritoDB,
		Agg: pipeline.Aggregator{
			Casos: casoDB, Vitimas: vitimaDB, Evidencias: evidenciaDB, Peritos: peritoDB, Laudos: laudoDB,
		},
		Enricher: stubEnricher{},
		Exporter: &stubExporter{pdf: []byte("x")},
	}

	body, _ := json.Marshal(map[string]string{
		"casoId":   casoID,
		"audioURL": "https://res.cloudinary.com/demo/video/upload/audio.mp3",
	})
	req := httptest.NewRequest("POST", "/api/v1/relatorios", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.CreateRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRelatorio_SignRelatorioHandlerAlreadySigned(t *testing.T) {
	rID := primitive.NewObjectID()

	relatorioDB := &mocks.RelatorioDatabase{}
	relatorioDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Relatorio{ID: rID, Assinado: true}, nil)

	rel := handlers.Relatorio{DB: relatorioDB}

	req := httptest.NewRequest("POST", "/api/v1/relatorios/"+rID.Hex()+"/sign", nil)
	req = mux.SetURLVars(req, map[string]string{"relatorio_id": rID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.SignRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	relatorioDB.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelatorio_SignRelatorioHandler(t *testing.T) {
	casoDB, vitimaDB, evidenciaDB, peritoDB, laudoDB, casoID := relatorioGraphMocks(t)

	rID := primitive.NewObjectID()
	relatorioDB := &mocks.RelatorioDatabase{}
	relatorioDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Relatorio{ID: rID, CasoID: casoID, Assinado: false}, nil)
	relatorioDB.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Relatorio{ID: rID, CasoID: casoID, Assinado: true}, nil)

	exporter := &stubExporter{pdf: []byte("%PDF-1.4 fake")}
	rel := handlers.Relatorio{
		DB: relatorioDB, CDB: casoDB, PDB: peritoDB,
		Agg: pipeline.Aggregator{
			Casos: casoDB, Vitimas: vitimaDB, Evidencias: evidenciaDB, Peritos: peritoDB, Laudos: laudoDB,
		},
		Enricher: stubEnricher{},
		Exporter: exporter,
	}

	req := httptest.NewRequest("POST", "/api/v1/relatorios/"+rID.Hex()+"/sign", nil)
	req = mux.SetURLVars(req, map[string]string{"relatorio_id": rID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.SignRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.RelatorioResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Relatorio.Assinado)
	assert.NotEmpty(t, resp.PDF)
	assert.Equal(t, []string{"assinar-relatorio"}, exporter.operacoes)
}

func TestRelatorio_SignRelatorioHandlerBrokenCaseRelation(t *testing.T) {
	rID := primitive.NewObjectID()
	casoID := primitive.NewObjectID().Hex()

	relatorioDB := &mocks.RelatorioDatabase{}
	relatorioDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Relatorio{ID: rID, CasoID: casoID, Assinado: false}, nil)
	relatorioDB.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Relatorio{ID: rID, CasoID: casoID, Assinado: true}, nil)

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	rel := handlers.Relatorio{
		DB: relatorioDB, CDB: casoDB,
		Agg:      pipeline.Aggregator{Casos: casoDB},
		Exporter: &stubExporter{},
	}

	req := httptest.NewRequest("POST", "/api/v1/relatorios/"+rID.Hex()+"/sign", nil)
	req = mux.SetURLVars(req, map[string]string{"relatorio_id": rID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(rel.SignRelatorioHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
