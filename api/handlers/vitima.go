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

// Vitima exported for testing purposes
type Vitima struct {
	DB  databases.VitimaDatabase
	EDB databases.EvidenciaDatabase
}

func validateVitimaEnums(v *models.Vitima) error {
	if v.Sexo == "" {
		v.Sexo = models.SexoIndeterminado
	}
	if !models.SexoValido(v.Sexo) {
		return fmt.Errorf("sexo must be one of: %s", strings.Join(models.SexoValidos, ", "))
	}
	if v.EstadoCorpo != "" && !models.EstadoCorpoValido(v.EstadoCorpo) {
		return fmt.Errorf("estadoCorpo must be one of: %s", strings.Join(models.EstadoCorpoValidos, ", "))
	}
	return nil
}

// CreateVitimaHandler registers a new victim, optionally already bound to a
// case. Identification state is derived from the presence of a name.
func (vh Vitima) CreateVitimaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var vitima models.Vitima
	if err := json.NewDecoder(r.Body).Decode(&vitima); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validateVitimaEnums(&vitima); err != nil {
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
		return
	}

	vitima.ID = primitive.NewObjectID()
	vitima.Identificada = vitima.Nome != ""
	vitima.DataCriacao = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := vh.DB.InsertOne(ctx, vitima); err != nil {
		config.ErrorStatus("failed to insert new vitima", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(vitima)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// VitimaByIDHandler returns a vitima by ID.
func (vh Vitima) VitimaByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vitimaID := mux.Vars(r)["vitima_id"]
	vID, err := primitive.ObjectIDFromHex(vitimaID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vitima, err := vh.DB.FindOne(ctx, bson.M{"_id": vID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("vitima not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get vitima by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(vitima)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VitimaHandler returns a filtered, paginated page of vitimas.
func (vh Vitima) VitimaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	page, limit, err := parsePagination(r)
	if err != nil {
		config.ErrorStatus("invalid pagination params", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{}
	if v := r.URL.Query().Get("casoId"); v != "" {
		filter["casoId"] = v
	}
	if v := r.URL.Query().Get("identificada"); v != "" {
		filter["identificada"] = v == "true"
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := vh.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count vitimas", http.StatusInternalServerError, w, err)
		return
	}
	vitimas, err := vh.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get vitimas", http.StatusInternalServerError, w, err)
		return
	}
	if vitimas == nil {
		vitimas = []models.Vitima{}
	}

	b, err := json.Marshal(models.VitimaListResponse{
		Data:  vitimas,
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

// UpdateVitimaHandler applies partial edits to a vitima. Renaming an unknown
// victim flips identificada accordingly.
func (vh Vitima) UpdateVitimaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vitimaID := mux.Vars(r)["vitima_id"]
	vID, err := primitive.ObjectIDFromHex(vitimaID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	updatable := []string{
		"nome", "dataNascimento", "idadeAproximada", "nacionalidade",
		"cidade", "sexo", "estadoCorpo", "lesoes", "casoId",
	}
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
	if v, ok := set["sexo"].(string); ok && !models.SexoValido(v) {
		config.ErrorStatus(
			fmt.Sprintf("sexo must be one of: %s", strings.Join(models.SexoValidos, ", ")),
			http.StatusBadRequest, w, errors.New("invalid sexo"),
		)
		return
	}
	if v, ok := set["estadoCorpo"].(string); ok && !models.EstadoCorpoValido(v) {
		config.ErrorStatus(
			fmt.Sprintf("estadoCorpo must be one of: %s", strings.Join(models.EstadoCorpoValidos, ", ")),
			http.StatusBadRequest, w, errors.New("invalid estadoCorpo"),
		)
		return
	}
	if nome, ok := set["nome"].(string); ok {
		set["identificada"] = nome != ""
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := vh.DB.UpdateOne(ctx, bson.M{"_id": vID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update vitima", http.StatusInternalServerError, w, err)
		return
	}
	vitima, err := vh.DB.FindOne(ctx, bson.M{"_id": vID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("vitima not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get vitima by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(vitima)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteVitimaHandler removes a vitima. Victims that still have evidence
// attached cannot be deleted.
func (vh Vitima) DeleteVitimaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vitimaID := mux.Vars(r)["vitima_id"]
	vID, err := primitive.ObjectIDFromHex(vitimaID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := vh.DB.FindOne(ctx, bson.M{"_id": vID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("vitima not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get vitima by ID", http.StatusInternalServerError, w, err)
		return
	}

	n, err := vh.EDB.CountDocuments(ctx, bson.M{"vitimaId": vitimaID})
	if err != nil {
		config.ErrorStatus("failed to count evidencias", http.StatusInternalServerError, w, err)
		return
	}
	if n > 0 {
		config.ErrorStatus("vitima still has evidencias attached", http.StatusConflict, w, errors.New("delete the evidencias first"))
		return
	}

	if err := vh.DB.DeleteOne(ctx, bson.M{"_id": vID}); err != nil {
		config.ErrorStatus("failed to delete vitima", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "vitima deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
