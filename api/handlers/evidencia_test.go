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

	"github.com/odontolegal/odontolegal-api/api/handlers"
	"github.com/odontolegal/odontolegal-api/databases/mocks"
	"github.com/odontolegal/odontolegal-api/models"
)

func TestEvidencia_CreateEvidenciaHandlerPayloadUnion(t *testing.T) {
	casoID := primitive.NewObjectID().Hex()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"imagem without imagemURL", map[string]string{"tipo": "imagem", "casoId": casoID}},
		{"imagem carrying texto", map[string]string{"tipo": "imagem", "imagemURL": "https://res.cloudinary.com/x.png", "texto": "obs", "casoId": casoID}},
		{"texto without texto", map[string]string{"tipo": "texto", "casoId": casoID}},
		{"texto carrying imagemURL", map[string]string{"tipo": "texto", "texto": "obs", "imagemURL": "https://res.cloudinary.com/x.png", "casoId": casoID}},
		{"unknown tipo", map[string]string{"tipo": "video", "casoId": casoID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := handlers.Evidencia{}
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/api/v1/evidencias", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestEvidencia_CreateEvidenciaHandlerImplicitVitima(t *testing.T) {
	cID := primitive.NewObjectID()

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Caso{ID: cID}, nil)

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	e := handlers.Evidencia{DB: evidenciaDB, VDB: vitimaDB, CDB: casoDB}

	body, _ := json.Marshal(map[string]interface{}{
		"tipo":   "texto",
		"texto":  "fragmento de mandíbula com três molares",
		"casoId": cID.Hex(),
	})
	req := httptest.NewRequest("POST", "/api/v1/evidencias", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp models.EvidenciaResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Vitima)
	// unnamed implicit victim starts unidentified and bound to the case
	assert.False(t, resp.Vitima.Identificada)
	assert.Equal(t, cID.Hex(), resp.Vitima.CasoID)
	assert.Equal(t, resp.Vitima.ID.Hex(), resp.Evidencia.VitimaID)

	vitimaDB.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestEvidencia_CreateEvidenciaHandlerBindsOrphanVitima(t *testing.T) {
	cID := primitive.NewObjectID()
	vID := primitive.NewObjectID()

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Caso{ID: cID}, nil)

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Vitima{ID: vID, CasoID: ""}, nil)
	vitimaDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	e := handlers.Evidencia{DB: evidenciaDB, VDB: vitimaDB, CDB: casoDB}

	body, _ := json.Marshal(map[string]string{
		"tipo":     "texto",
		"texto":    "obs",
		"casoId":   cID.Hex(),
		"vitimaId": vID.Hex(),
	})
	req := httptest.NewRequest("POST", "/api/v1/evidencias", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	vitimaDB.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvidencia_CreateEvidenciaHandlerVitimaCasoMismatch(t *testing.T) {
	cID := primitive.NewObjectID()
	vID := primitive.NewObjectID()

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Caso{ID: cID}, nil)

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Vitima{ID: vID, CasoID: primitive.NewObjectID().Hex()}, nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	e := handlers.Evidencia{DB: evidenciaDB, VDB: vitimaDB, CDB: casoDB}

	body, _ := json.Marshal(map[string]string{
		"tipo":     "texto",
		"texto":    "obs",
		"casoId":   cID.Hex(),
		"vitimaId": vID.Hex(),
	})
	req := httptest.NewRequest("POST", "/api/v1/evidencias", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	evidenciaDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestEvidencia_DeleteEvidenciaHandlerCascadesOrphanVitima(t *testing.T) {
	eID := primitive.NewObjectID()
	vID := primitive.NewObjectID()

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Evidencia{ID: eID, VitimaID: vID.Hex()}, nil)
	evidenciaDB.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)
	evidenciaDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)

	e := handlers.Evidencia{DB: evidenciaDB, VDB: vitimaDB}

	req := httptest.NewRequest("DELETE", "/api/v1/evidencias/"+eID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"evidencia_id": eID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(e.DeleteEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	vitimaDB.AssertCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}

func TestEvidencia_DeleteEvidenciaHandlerKeepsVitimaWithEvidence(t *testing.T) {
	eID := primitive.NewObjectID()
	vID := primitive.NewObjectID()

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Evidencia{ID: eID, VitimaID: vID.Hex()}, nil)
	evidenciaDB.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)
	evidenciaDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil)

	vitimaDB := &mocks.VitimaDatabase{}

	e := handlers.Evidencia{DB: evidenciaDB, VDB: vitimaDB}

	req := httptest.NewRequest("DELETE", "/api/v1/evidencias/"+eID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"evidencia_id": eID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(e.DeleteEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	vitimaDB.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}

func TestEvidencia_UpdateEvidenciaHandlerRejectsNonStringFields(t *testing.T) {
	eID := primitive.NewObjectID()

	evidenciaDB := &mocks.EvidenciaDatabase{}

	e := handlers.Evidencia{DB: evidenciaDB}

	body, _ := json.Marshal(map[string]interface{}{"texto": 123})
	req := httptest.NewRequest("PUT", "/api/v1/evidencias/"+eID.Hex(), bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"evidencia_id": eID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(e.UpdateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	evidenciaDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
