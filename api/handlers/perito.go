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
	"golang.org/x/crypto/bcrypt"

	"github.com/odontolegal/odontolegal-api/api"
	"github.com/odontolegal/odontolegal-api/config"
	"github.com/odontolegal/odontolegal-api/databases"
	"github.com/odontolegal/odontolegal-api/models"
)

// Perito exported for testing purposes
type Perito struct {
	DB databases.PeritoDatabase
}

type createPeritoRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Cargo string `json:"cargo"`
}

// CreatePeritoHandler registers a new examiner account. The password is
// stored as a bcrypt hash and never serialized back.
func (p Perito) CreatePeritoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req createPeritoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Nome == "" || req.Email == "" || req.Senha == "" {
		config.ErrorStatus("nome, email and senha are required", http.StatusBadRequest, w, errors.New("missing required field"))
		return
	}
	if req.Cargo == "" {
		req.Cargo = "perito"
	}
	if !models.PeritoCargoValido(req.Cargo) {
		config.ErrorStatus(
			fmt.Sprintf("cargo must be one of: %s", strings.Join(models.PeritoCargosValidos, ", ")),
			http.StatusBadRequest, w, errors.New("invalid cargo"),
		)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := p.DB.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("failed to check email uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if n > 0 {
		config.ErrorStatus("email already in use", http.StatusConflict, w, errors.New("duplicate email"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	perito := models.Perito{
		ID:          primitive.NewObjectID(),
		Nome:        req.Nome,
		Email:       req.Email,
		Senha:       string(hash),
		Cargo:       req.Cargo,
		DataCriacao: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := p.DB.InsertOne(ctx, perito); err != nil {
		config.ErrorStatus("failed to insert new perito", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(perito)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// PeritoByIDHandler returns a perito by ID.
func (p Perito) PeritoByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	peritoID := mux.Vars(r)["perito_id"]
	pID, err := primitive.ObjectIDFromHex(peritoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	perito, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("perito not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get perito by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(perito)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PeritoHandler returns a paginated page of peritos.
func (p Perito) PeritoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	page, limit, err := parsePagination(r)
	if err != nil {
		config.ErrorStatus("invalid pagination params", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{}
	if v := r.URL.Query().Get("cargo"); v != "" {
		filter["cargo"] = v
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := p.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count peritos", http.StatusInternalServerError, w, err)
		return
	}
	peritos, err := p.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get peritos", http.StatusInternalServerError, w, err)
		return
	}
	if peritos == nil {
		peritos = []models.Perito{}
	}

	b, err := json.Marshal(models.PeritoListResponse{
		Data:  peritos,
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

// UpdatePeritoHandler applies partial edits to an examiner account. A new
// senha is rehashed before storage.
func (p Perito) UpdatePeritoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	peritoID := mux.Vars(r)["perito_id"]
	pID, err := primitive.ObjectIDFromHex(peritoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	if v, ok := req["nome"].(string); ok && v != "" {
		set["nome"] = v
	}
	if v, ok := req["cargo"].(string); ok {
		if !models.PeritoCargoValido(v) {
			config.ErrorStatus(
				fmt.Sprintf("cargo must be one of: %s", strings.Join(models.PeritoCargosValidos, ", ")),
				http.StatusBadRequest, w, errors.New("invalid cargo"),
			)
			return
		}
		set["cargo"] = v
	}
	if v, ok := req["senha"].(string); ok && v != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
		if err != nil {
			config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
			return
		}
		set["senha"] = string(hash)
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request body", http.StatusBadRequest, w, errors.New("empty update"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.DB.UpdateOne(ctx, bson.M{"_id": pID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update perito", http.StatusInternalServerError, w, err)
		return
	}
	perito, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("perito not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get perito by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(perito)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeletePeritoHandler removes an examiner account.
func (p Perito) DeletePeritoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	peritoID := mux.Vars(r)["perito_id"]
	pID, err := primitive.ObjectIDFromHex(peritoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.FindOne(ctx, bson.M{"_id": pID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("perito not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get perito by ID", http.StatusInternalServerError, w, err)
		return
	}
	if err := p.DB.DeleteOne(ctx, bson.M{"_id": pID}); err != nil {
		config.ErrorStatus("failed to delete perito", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "perito deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
