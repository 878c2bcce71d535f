package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odontolegal/odontolegal-api/api/handlers"
)

func TestHealthCheckHandler(t *testing.T) {
	a := handlers.App{}
	a.Router = a.New()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	a.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive": true}`, rr.Body.String())
}

func TestRouterUnknownRoute(t *testing.T) {
	a := handlers.App{}
	a.Router = a.New()

	req := httptest.NewRequest("GET", "/api/v1/inexistente", nil)
	rr := httptest.NewRecorder()

	a.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
