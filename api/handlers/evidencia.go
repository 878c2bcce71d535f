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
	"go.uber.org/zap"

	"github.com/odontolegal/odontolegal-api/api"
	"github.com/odontolegal/odontolegal-api/config"
	"github.com/odontolegal/odontolegal-api/databases"
	"github.com/odontolegal/odontolegal-api/models"
)

// Evidencia exported for testing purposes
type Evidencia struct {
	DB  databases.EvidenciaDatabase
	VDB databases.VitimaDatabase
	CDB databases.CasoDatabase
}

type createEvidenciaRequest struct {
	models.Evidencia
	// Vitima, when present and vitimaId is absent, seeds the victim record
	// created implicitly alongside the evidence.
	Vitima *models.Vitima `json:"vitima"`
}

func validateEvidenciaPayload(ev models.Evidencia) error {
	if !models.EvidenciaTipoValido(ev.Tipo) {
		return fmt.Errorf("tipo must be one of: %s", strings.Join(models.EvidenciaTiposValidos, ", "))
	}
	if ev.Categoria != "" && !models.EvidenciaCategoriaValida(ev.Categoria) {
		return fmt.Errorf("categoria must be one of: %s", strings.Join(models.EvidenciaCategoriasValidas, ", "))
	}
	switch ev.Tipo {
	case models.EvidenciaTipoImagem:
		if ev.ImagemURL == "" || ev.Texto != "" {
			return errors.New("evidencia of tipo imagem must carry imagemURL and no texto")
		}
	case models.EvidenciaTipoTexto:
		if ev.Texto == "" || ev.ImagemURL != "" {
			return errors.New("evidencia of tipo texto must carry texto and no imagemURL")
		}
	}
	return nil
}

// CreateEvidenciaHandler stores a new evidence item. When no victim is
// referenced one is created on the fly, and a victim without a case is bound
// to the evidence's case.
func (e Evidencia) CreateEvidenciaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req createEvidenciaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	ev := req.Evidencia
	if ev.CasoID == "" {
		config.ErrorStatus("casoId is required", http.StatusBadRequest, w, errors.New("missing required field"))
		return
	}
	if err := validateEvidenciaPayload(ev); err != nil {
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
		return
	}

	cID, err := primitive.ObjectIDFromHex(ev.CasoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.CDB.FindOne(ctx, bson.M{"_id": cID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get caso by ID", http.StatusInternalServerError, w, err)
		return
	}

	var vitima *models.Vitima
	if ev.VitimaID == "" {
		// no victim referenced: create one implicitly, bound to the case
		nova := models.Vitima{}
		if req.Vitima != nil {
			nova = *req.Vitima
		}
		if err := validateVitimaEnums(&nova); err != nil {
			config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
			return
		}
		nova.ID = primitive.NewObjectID()
		nova.CasoID = ev.CasoID
		nova.Identificada = nova.Nome != ""
		nova.DataCriacao = primitive.NewDateTimeFromTime(time.Now())
		if _, err := e.VDB.InsertOne(ctx, nova); err != nil {
			config.ErrorStatus("failed to insert new vitima", http.StatusInternalServerError, w, err)
			return
		}
		ev.VitimaID = nova.ID.Hex()
		vitima = &nova
	} else {
		vID, err := primitive.ObjectIDFromHex(ev.VitimaID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		existente, err := e.VDB.FindOne(ctx, bson.M{"_id": vID})
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				config.ErrorStatus("vitima not found", http.StatusNotFound, w, err)
				return
			}
			config.ErrorStatus("failed to get vitima by ID", http.StatusInternalServerError, w, err)
			return
		}
		if existente.CasoID == "" {
			// orphan victim gets bound to the case during submission
			if err := e.VDB.UpdateOne(ctx, bson.M{"_id": vID}, bson.M{"$set": bson.M{"casoId": ev.CasoID}}); err != nil {
				config.ErrorStatus("failed to bind vitima to caso", http.StatusInternalServerError, w, err)
				return
			}
			existente.CasoID = ev.CasoID
		} else if existente.CasoID != ev.CasoID {
			config.ErrorStatus("vitima belongs to another caso", http.StatusConflict, w, errors.New("casoId mismatch"))
			return
		}
		vitima = existente
	}

	ev.ID = primitive.NewObjectID()
	ev.DataUpload = primitive.NewDateTimeFromTime(time.Now())

	if _, err := e.DB.InsertOne(ctx, ev); err != nil {
		config.ErrorStatus("failed to insert new evidencia", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.EvidenciaResponse{Evidencia: ev, Vitima: vitima})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// EvidenciaByIDHandler returns an evidencia by ID.
func (e Evidencia) EvidenciaByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	evidenciaID := mux.Vars(r)["evidencia_id"]
	eID, err := primitive.ObjectIDFromHex(evidenciaID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("evidencia not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get evidencia by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(ev)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EvidenciaHandler returns a filtered, paginated page of evidencias.
func (e Evidencia) EvidenciaHandler(w http.ResponseWriter, r *http.Request) {
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
	if v := r.URL.Query().Get("vitimaId"); v != "" {
		filter["vitimaId"] = v
	}
	if v := r.URL.Query().Get("tipo"); v != "" {
		if !models.EvidenciaTipoValido(v) {
			config.ErrorStatus(
				fmt.Sprintf("tipo must be one of: %s", strings.Join(models.EvidenciaTiposValidos, ", ")),
				http.StatusBadRequest, w, errors.New("invalid tipo"),
			)
			return
		}
		filter["tipo"] = v
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := e.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count evidencias", http.StatusInternalServerError, w, err)
		return
	}
	evidencias, err := e.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get evidencias", http.StatusInternalServerError, w, err)
		return
	}
	if evidencias == nil {
		evidencias = []models.Evidencia{}
	}

	b, err := json.Marshal(models.EvidenciaListResponse{
		Data:  evidencias,
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

// DeleteEvidenciaHandler removes an evidence item. A victim left with no
// evidence at all is removed along with it.
func (e Evidencia) DeleteEvidenciaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	evidenciaID := mux.Vars(r)["evidencia_id"]
	eID, err := primitive.ObjectIDFromHex(evidenciaID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("evidencia not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get evidencia by ID", http.StatusInternalServerError, w, err)
		return
	}

	if err := e.DB.DeleteOne(ctx, bson.M{"_id": eID}); err != nil {
		config.ErrorStatus("failed to delete evidencia", http.StatusInternalServerError, w, err)
		return
	}

	if ev.VitimaID != "" {
		n, err := e.DB.CountDocuments(ctx, bson.M{"vitimaId": ev.VitimaID})
		if err == nil && n == 0 {
			if vID, err := primitive.ObjectIDFromHex(ev.VitimaID); err == nil {
				if err := e.VDB.DeleteOne(ctx, bson.M{"_id": vID}); err != nil {
					zap.S().Warnw("failed to remove orphaned vitima", "vitimaId", ev.VitimaID, "error", err)
				}
			}
		}
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "evidencia deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateEvidenciaHandler applies partial edits to an evidence item. The
// payload union is re-validated against the resulting document.
func (e Evidencia) UpdateEvidenciaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	evidenciaID := mux.Vars(r)["evidencia_id"]
	eID, err := primitive.ObjectIDFromHex(evidenciaID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	updatable := []string{"categoria", "texto", "imagemURL", "coletadoPor"}
	set := bson.M{}
	for _, field := range updatable {
		v, ok := req[field]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			config.ErrorStatus(fmt.Sprintf("%s must be a string", field), http.StatusBadRequest, w, errors.New("invalid field type"))
			return
		}
		set[field] = s
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request body", http.StatusBadRequest, w, errors.New("empty update"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("evidencia not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get evidencia by ID", http.StatusInternalServerError, w, err)
		return
	}
	if v, ok := set["categoria"].(string); ok {
		ev.Categoria = v
	}
	if v, ok := set["texto"].(string); ok {
		ev.Texto = v
	}
	if v, ok := set["imagemURL"].(string); ok {
		ev.ImagemURL = v
	}
	if err := validateEvidenciaPayload(*ev); err != nil {
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
		return
	}

	if err := e.DB.UpdateOne(ctx, bson.M{"_id": eID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update evidencia", http.StatusInternalServerError, w, err)
		return
	}
	atualizada, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get evidencia by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(atualizada)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
