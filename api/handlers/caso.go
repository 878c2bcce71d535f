package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odontolegal/odontolegal-api/api"
	"github.com/odontolegal/odontolegal-api/config"
	"github.com/odontolegal/odontolegal-api/databases"
	"github.com/odontolegal/odontolegal-api/models"
)

// Caso exported for testing purposes
type Caso struct {
	DB databases.CasoDatabase
}

// CreateCasoHandler opens a new investigation case.
func (c Caso) CreateCasoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var caso models.Caso
	if err := json.NewDecoder(r.Body).Decode(&caso); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if caso.Titulo == "" {
		config.ErrorStatus("titulo is required", http.StatusBadRequest, w, errors.New("missing required field"))
		return
	}
	if caso.CasoReferencia == "" {
		config.ErrorStatus("casoReferencia is required", http.StatusBadRequest, w, errors.New("missing required field"))
		return
	}
	if caso.Status == "" {
		caso.Status = models.CasoStatusEmAndamento
	}
	if !models.CasoStatusValido(caso.Status) {
		config.ErrorStatus(
			fmt.Sprintf("status must be one of: %s", strings.Join(models.CasoStatusValidos, ", ")),
			http.StatusBadRequest, w, errors.New("invalid status"),
		)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := c.DB.CountDocuments(ctx, bson.M{"casoReferencia": caso.CasoReferencia})
	if err != nil {
		config.ErrorStatus("failed to check casoReferencia uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if n > 0 {
		config.ErrorStatus("casoReferencia already in use", http.StatusConflict, w, errors.New("duplicate casoReferencia"))
		return
	}

	caso.ID = primitive.NewObjectID()
	caso.DataCriacao = primitive.NewDateTimeFromTime(time.Now())

	if _, err := c.DB.InsertOne(ctx, caso); err != nil {
		config.ErrorStatus("failed to insert new caso", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(caso)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CasoByIDHandler returns a caso by ID.
func (c Caso) CasoByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	casoID := mux.Vars(r)["caso_id"]
	cID, err := primitive.ObjectIDFromHex(casoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caso, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get caso by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(caso)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CasoHandler returns a filtered, paginated page of casos.
func (c Caso) CasoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	page, limit, err := parsePagination(r)
	if err != nil {
		config.ErrorStatus("invalid pagination params", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{}
	if v := r.URL.Query().Get("status"); v != "" {
		if !models.CasoStatusValido(v) {
			config.ErrorStatus(
				fmt.Sprintf("status must be one of: %s", strings.Join(models.CasoStatusValidos, ", ")),
				http.StatusBadRequest, w, errors.New("invalid status"),
			)
			return
		}
		filter["status"] = v
	}
	if v := r.URL.Query().Get("peritoResponsavel"); v != "" {
		filter["peritoResponsavel"] = v
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := c.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count casos", http.StatusInternalServerError, w, err)
		return
	}
	casos, err := c.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get casos", http.StatusInternalServerError, w, err)
		return
	}
	if casos == nil {
		casos = []models.Caso{}
	}

	b, err := json.Marshal(models.CasoListResponse{
		Data:  casos,
		Page:  page,
		Limit: limit,
		Total: total,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateCasoHandler applies partial edits to a caso.
func (c Caso) UpdateCasoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	casoID := mux.Vars(r)["caso_id"]
	cID, err := primitive.ObjectIDFromHex(casoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	updatable := []string{"titulo", "descricao", "status", "cidade", "estado", "peritoResponsavel"}
	set := bson.M{}
	for _, field := range updatable {
		if v, ok := req[field]; ok {
			set[field] = v
		}
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request body", http.StatusBadRequest, w, errors.New("empty update"))
		return
	}
	if v, ok := set["status"].(string); ok && !models.CasoStatusValido(v) {
		config.ErrorStatus(
			fmt.Sprintf("status must be one of: %s", strings.Join(models.CasoStatusValidos, ", ")),
			http.StatusBadRequest, w, errors.New("invalid status"),
		)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.DB.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update caso", http.StatusInternalServerError, w, err)
		return
	}
	caso, err := c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get caso by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(caso)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteCasoHandler removes a caso.
func (c Caso) DeleteCasoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	casoID := mux.Vars(r)["caso_id"]
	cID, err := primitive.ObjectIDFromHex(casoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := c.DB.FindOne(ctx, bson.M{"_id": cID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get caso by ID", http.StatusInternalServerError, w, err)
		return
	}
	if err := c.DB.DeleteOne(ctx, bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to delete caso", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "caso deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
