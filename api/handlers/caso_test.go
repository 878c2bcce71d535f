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
)

func TestCaso_CreateCasoHandler(t *testing.T) {
	casoDB := &mocks.CasoDatabase{}
	casoDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	casoDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	c := handlers.Caso{DB: casoDB}

	body, _ := json.Marshal(map[string]string{
		"titulo":         "Ossada encontrada",
		"casoReferencia": "REF-2026-001",
	})
	req := httptest.NewRequest("POST", "/api/v1/casos", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var caso models.Caso
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &caso))
	assert.Equal(t, models.CasoStatusEmAndamento, caso.Status)
	assert.False(t, caso.ID.IsZero())
}

func TestCaso_CreateCasoHandlerDuplicateReferencia(t *testing.T) {
	casoDB := &mocks.CasoDatabase{}
	casoDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	c := handlers.Caso{DB: casoDB}

	body, _ := json.Marshal(map[string]string{
		"titulo":         "Ossada encontrada",
		"casoReferencia": "REF-2026-001",
	})
	req := httptest.NewRequest("POST", "/api/v1/casos", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	casoDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCaso_CreateCasoHandlerInvalidStatus(t *testing.T) {
	c := handlers.Caso{}

	body, _ := json.Marshal(map[string]string{
		"titulo":         "Ossada encontrada",
		"casoReferencia": "CASE-XYZ",
		"status":         "Aberto",
	})
	req := httptest.NewRequest("POST", "/api/v1/casos", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ErrorMessageResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	// the rejection names the accepted values
	assert.Contains(t, resp.Response.Message, "Em andamento")
	assert.Contains(t, resp.Response.Message, "Finalizado")
	assert.Contains(t, resp.Response.Message, "Arquivado")
}

func TestCaso_CasoByIDHandlerNotFound(t *testing.T) {
	cID := primitive.NewObjectID()

	casoDB := &mocks.CasoDatabase{}
	casoDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	c := handlers.Caso{DB: casoDB}

	req := httptest.NewRequest("GET", "/api/v1/casos/"+cID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"caso_id": cID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CasoByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCaso_CasoByIDHandlerBadHex(t *testing.T) {
	c := handlers.Caso{}

	req := httptest.NewRequest("GET", "/api/v1/casos/1234", nil)
	req = mux.SetURLVars(req, map[string]string{"caso_id": "1234"})
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CasoByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	assert.JSONEq(t, string(b), rr.Body.String())
}

func TestCaso_CasoHandlerStatusFilter(t *testing.T) {
	c := handlers.Caso{}

	req := httptest.NewRequest("GET", "/api/v1/casos?status=Inexistente", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCaso_CasoHandler(t *testing.T) {
	casoDB := &mocks.CasoDatabase{}
	casoDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil)
	casoDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Caso{
			{ID: primitive.NewObjectID(), Status: models.CasoStatusFinalizado},
			{ID: primitive.NewObjectID(), Status: models.CasoStatusFinalizado},
		}, nil)

	c := handlers.Caso{DB: casoDB}

	req := httptest.NewRequest("GET", "/api/v1/casos?status=Finalizado", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.CasoListResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Data, 2)
}

func TestCaso_UpdateCasoHandlerEmptyBody(t *testing.T) {
	cID := primitive.NewObjectID()
	c := handlers.Caso{}

	req := httptest.NewRequest("PUT", "/api/v1/casos/"+cID.Hex(), bytes.NewReader([]byte(`{"irrelevante":"x"}`)))
	req = mux.SetURLVars(req, map[string]string{"caso_id": cID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.UpdateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCaso_CreateCasoHandlerMissingReferencia(t *testing.T) {
	casoDB := &mocks.CasoDatabase{}

	c := handlers.Caso{DB: casoDB}

	body, _ := json.Marshal(map[string]string{"titulo": "Ossada encontrada"})
	req := httptest.NewRequest("POST", "/api/v1/casos", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	casoDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}
