package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontolegal/odontolegal-api/api/handlers"
	"github.com/odontolegal/odontolegal-api/databases/mocks"
	"github.com/odontolegal/odontolegal-api/models"
)

func TestVitima_VitimaHandler(t *testing.T) {
	var captured bson.M

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("CountDocuments", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(bson.M) }).
		Return(int64(2), nil)
	vitimaDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Vitima{
			{ID: primitive.NewObjectID(), Nome: "Maria", Identificada: true},
			{ID: primitive.NewObjectID()},
		}, nil)

	vh := handlers.Vitima{DB: vitimaDB}

	req := httptest.NewRequest("GET", "/api/v1/vitimas?casoId=abc&identificada=true", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(vh.VitimaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc", captured["casoId"])
	assert.Equal(t, true, captured["identificada"])

	var resp models.VitimaListResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Data, 2)
}

func TestVitima_DeleteVitimaHandlerBlockedByEvidencias(t *testing.T) {
	vID := primitive.NewObjectID()

	vitimaDB := &mocks.VitimaDatabase{}
	vitimaDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Vitima{ID: vID}, nil)

	evidenciaDB := &mocks.EvidenciaDatabase{}
	evidenciaDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil)

	vh := handlers.Vitima{DB: vitimaDB, EDB: evidenciaDB}

	req := httptest.NewRequest("DELETE", "/api/v1/vitimas/"+vID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"vitima_id": vID.Hex()})
	rr := httptest.NewRecorder()

	http.HandlerFunc(vh.DeleteVitimaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	vitimaDB.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}
