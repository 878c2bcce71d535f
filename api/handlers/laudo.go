package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontolegal/odontolegal-api/api"
	"github.com/odontolegal/odontolegal-api/config"
	"github.com/odontolegal/odontolegal-api/databases"
	"github.com/odontolegal/odontolegal-api/models"
	"github.com/odontolegal/odontolegal-api/narrative"
	"github.com/odontolegal/odontolegal-api/pdfexport"
	"github.com/odontolegal/odontolegal-api/pipeline"
	templates "github.com/odontolegal/odontolegal-api/templates/html"
)

// Laudo exported for testing purposes
type Laudo struct {
	DB       databases.LaudoDatabase
	VDB      databases.VitimaDatabase
	CDB      databases.CasoDatabase
	EDB      databases.EvidenciaDatabase
	PDB      databases.PeritoDatabase
	Agg      pipeline.Aggregator
	Enricher narrative.Enricher
	Exporter pdfexport.Exporter
}

type createLaudoRequest struct {
	VitimaID        string `json:"vitimaId"`
	PeritoID        string `json:"peritoId"`
	DadosAntemortem string `json:"dadosAntemortem"`
	DadosPostmortem string `json:"dadosPostmortem"`
}

// CreateLaudoHandler runs the full generation pipeline for a new laudo:
// aggregate, enrich, render, export, persist. The laudo comes out signed
// on behalf of the requesting examiner.
func (l Laudo) CreateLaudoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req createLaudoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.VitimaID == "" || req.PeritoID == "" {
		config.ErrorStatus("vitimaId and peritoId are required", http.StatusBadRequest, w, errors.New("missing required field"))
		return
	}

	ctx := r.Context()
	snap, err := l.Agg.LaudoSnapshot(ctx, req.VitimaID, req.PeritoID)
	if err != nil {
		config.ErrorStatus("failed to aggregate laudo data", aggregateStatus(err), w, err)
		return
	}

	narrativa := l.Enricher.Gerar(ctx, pipeline.ResumoLaudo(snap))

	evidenciaIDs := make([]string, 0, len(snap.Evidencias))
	for _, ev := range snap.Evidencias {
		evidenciaIDs = append(evidenciaIDs, ev.ID.Hex())
	}

	now := time.Now()
	laudo := models.Laudo{
		ID:              primitive.NewObjectID(),
		VitimaID:        req.VitimaID,
		CasoID:          snap.Caso.ID.Hex(),
		PeritoID:        req.PeritoID,
		Evidencias:      evidenciaIDs,
		DadosAntemortem: req.DadosAntemortem,
		DadosPostmortem: req.DadosPostmortem,
		AnaliseLesoes:   narrativa.Analise,
		Conclusao:       narrativa.Conclusao,
		DataCriacao:     primitive.NewDateTimeFromTime(now),
	}
	token := pipeline.AssinaturaToken(req.PeritoID, laudo.ID.Hex(), now)
	laudo.AssinaturaDigital = &token

	html := templates.RenderLaudoHTML(templates.LaudoDocumento{
		Laudo:      laudo,
		Vitima:     snap.Vitima,
		Caso:       snap.Caso,
		Perito:     snap.Perito,
		Evidencias: snap.Evidencias,
		Coletores:  snap.Coletores,
		Assinante:  snap.Perito.Nome,
		AssinadoEm: now,
	})
	pdf, err := l.Exporter.Export(ctx, html, "criar-laudo", laudo.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to export laudo pdf", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := l.DB.InsertOne(ctx, laudo); err != nil {
		config.ErrorStatus("failed to insert new laudo", http.StatusInternalServerError, w, err)
		return
	}

	go sendDocumentoAssinadoEmail(snap.Perito, "Laudo", laudo.ID.Hex())

	b, err := json.Marshal(models.LaudoResponse{
		Laudo: laudo,
		PDF:   base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// SignLaudoHandler fills in the digital signature of an unsigned laudo. The
// write is conditional on assinaturaDigital still being unset, so concurrent
// sign requests cannot both succeed.
func (l Laudo) SignLaudoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	laudoID := mux.Vars(r)["laudo_id"]
	lID, err := primitive.ObjectIDFromHex(laudoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx := r.Context()
	laudo, err := l.DB.FindOne(ctx, bson.M{"_id": lID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("laudo not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get laudo by ID", http.StatusInternalServerError, w, err)
		return
	}
	if laudo.AssinaturaDigital != nil {
		config.ErrorStatus("laudo is already signed", http.StatusBadRequest, w, errors.New("assinaturaDigital already set"))
		return
	}

	now := time.Now()
	token := pipeline.AssinaturaToken(laudo.PeritoID, laudoID, now)
	after := options.After
	signed, err := l.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": lID, "assinaturaDigital": nil},
		bson.M{"$set": bson.M{"assinaturaDigital": token}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// lost the race: someone signed between the read and the update
			config.ErrorStatus("laudo is already signed", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to sign laudo", http.StatusInternalServerError, w, err)
		return
	}

	snap, err := l.Agg.LaudoSnapshot(ctx, signed.VitimaID, signed.PeritoID)
	if err != nil {
		config.ErrorStatus("failed to aggregate laudo data", aggregateStatus(err), w, err)
		return
	}

	html := templates.RenderLaudoHTML(templates.LaudoDocumento{
		Laudo:      *signed,
		Vitima:     snap.Vitima,
		Caso:       snap.Caso,
		Perito:     snap.Perito,
		Evidencias: snap.Evidencias,
		Coletores:  snap.Coletores,
		Assinante:  snap.Perito.Nome,
		AssinadoEm: now,
	})
	pdf, err := l.Exporter.Export(ctx, html, "assinar-laudo", laudoID)
	if err != nil {
		config.ErrorStatus("failed to export laudo pdf", http.StatusInternalServerError, w, err)
		return
	}

	go sendDocumentoAssinadoEmail(snap.Perito, "Laudo", laudoID)

	b, err := json.Marshal(models.LaudoResponse{
		Laudo: *signed,
		PDF:   base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateLaudoHandler applies partial edits to a laudo and re-exports its PDF
// so the stored artifact always reflects the persisted document.
func (l Laudo) UpdateLaudoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	laudoID := mux.Vars(r)["laudo_id"]
	lID, err := primitive.ObjectIDFromHex(laudoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		VitimaID        *string   `json:"vitimaId"`
		PeritoID        *string   `json:"peritoId"`
		Evidencias      *[]string `json:"evidencias"`
		DadosAntemortem *string   `json:"dadosAntemortem"`
		DadosPostmortem *string   `json:"dadosPostmortem"`
		AnaliseLesoes   *string   `json:"analiseLesoes"`
		Conclusao       *string   `json:"conclusao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx := r.Context()
	laudo, err := l.DB.FindOne(ctx, bson.M{"_id": lID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("laudo not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get laudo by ID", http.StatusInternalServerError, w, err)
		return
	}

	set := bson.M{}
	if req.VitimaID != nil {
		set["vitimaId"] = *req.VitimaID
		laudo.VitimaID = *req.VitimaID
	}
	if req.PeritoID != nil {
		set["peritoId"] = *req.PeritoID
		laudo.PeritoID = *req.PeritoID
	}
	if req.Evidencias != nil {
		set["evidencias"] = *req.Evidencias
		laudo.Evidencias = *req.Evidencias
	}
	if req.DadosAntemortem != nil {
		set["dadosAntemortem"] = *req.DadosAntemortem
		laudo.DadosAntemortem = *req.DadosAntemortem
	}
	if req.DadosPostmortem != nil {
		set["dadosPostmortem"] = *req.DadosPostmortem
		laudo.DadosPostmortem = *req.DadosPostmortem
	}
	if req.AnaliseLesoes != nil {
		set["analiseLesoes"] = *req.AnaliseLesoes
		laudo.AnaliseLesoes = *req.AnaliseLesoes
	}
	if req.Conclusao != nil {
		set["conclusao"] = *req.Conclusao
		laudo.Conclusao = *req.Conclusao
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields in request body", http.StatusBadRequest, w, errors.New("empty update"))
		return
	}

	// references are validated against the entity graph before anything
	// is persisted
	snap, err := l.Agg.LaudoSnapshot(ctx, laudo.VitimaID, laudo.PeritoID)
	if err != nil {
		config.ErrorStatus("failed to aggregate laudo data", aggregateStatus(err), w, err)
		return
	}

	if err := l.DB.UpdateOne(ctx, bson.M{"_id": lID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update laudo", http.StatusInternalServerError, w, err)
		return
	}

	doc := templates.LaudoDocumento{
		Laudo:      *laudo,
		Vitima:     snap.Vitima,
		Caso:       snap.Caso,
		Perito:     snap.Perito,
		Evidencias: snap.Evidencias,
		Coletores:  snap.Coletores,
	}
	if laudo.AssinaturaDigital != nil {
		doc.Assinante = snap.Perito.Nome
		doc.AssinadoEm = time.Now()
	}
	pdf, err := l.Exporter.Export(ctx, templates.RenderLaudoHTML(doc), "atualizar-laudo", laudoID)
	if err != nil {
		config.ErrorStatus("failed to export laudo pdf", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.LaudoResponse{
		Laudo: *laudo,
		PDF:   base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LaudoByIDHandler returns a single laudo with its related entities resolved.
func (l Laudo) LaudoByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	laudoID := mux.Vars(r)["laudo_id"]
	lID, err := primitive.ObjectIDFromHex(laudoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	laudo, err := l.DB.FindOne(ctx, bson.M{"_id": lID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("laudo not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get laudo by ID", http.StatusInternalServerError, w, err)
		return
	}

	populado := models.LaudoPopulado{Laudo: *laudo}
	if id, err := primitive.ObjectIDFromHex(laudo.VitimaID); err == nil {
		if v, err := l.VDB.FindOne(ctx, bson.M{"_id": id}); err == nil {
			populado.Vitima = *v
		}
	}
	if id, err := primitive.ObjectIDFromHex(laudo.CasoID); err == nil {
		if c, err := l.CDB.FindOne(ctx, bson.M{"_id": id}); err == nil {
			populado.Caso = *c
		}
	}
	if id, err := primitive.ObjectIDFromHex(laudo.PeritoID); err == nil {
		if p, err := l.PDB.FindOne(ctx, bson.M{"_id": id}); err == nil {
			populado.Perito = *p
		}
	}
	evIDs := make([]primitive.ObjectID, 0, len(laudo.Evidencias))
	for _, hex := range laudo.Evidencias {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			evIDs = append(evIDs, id)
		}
	}
	if len(evIDs) > 0 {
		if evs, err := l.EDB.Find(ctx, bson.M{"_id": bson.M{"$in": evIDs}}); err == nil {
			populado.Evidencias = evs
		}
	}

	b, err := json.Marshal(populado)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LaudoHandler returns a filtered, paginated page of laudos.
func (l Laudo) LaudoHandler(w http.ResponseWriter, r *http.Request) {
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
	if v := r.URL.Query().Get("peritoId"); v != "" {
		filter["peritoId"] = v
	}
	if v := r.URL.Query().Get("evidenciaId"); v != "" {
		filter["evidencias"] = v
	}
	dataCriacao := bson.M{}
	if v := r.URL.Query().Get("dataInicio"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			config.ErrorStatus("dataInicio must be formatted as YYYY-MM-DD", http.StatusBadRequest, w, err)
			return
		}
		dataCriacao["$gte"] = primitive.NewDateTimeFromTime(t)
	}
	if v := r.URL.Query().Get("dataFim"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			config.ErrorStatus("dataFim must be formatted as YYYY-MM-DD", http.StatusBadRequest, w, err)
			return
		}
		// inclusive of the whole end day
		dataCriacao["$lte"] = primitive.NewDateTimeFromTime(t.AddDate(0, 0, 1).Add(-time.Millisecond))
	}
	if len(dataCriacao) > 0 {
		filter["dataCriacao"] = dataCriacao
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := l.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count laudos", http.StatusInternalServerError, w, err)
		return
	}
	laudos, err := l.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get laudos", http.StatusInternalServerError, w, err)
		return
	}
	if laudos == nil {
		laudos = []models.Laudo{}
	}

	b, err := json.Marshal(models.LaudoListResponse{
		Data:  laudos,
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

// DeleteLaudoHandler removes a laudo document. Exported PDF artifacts are
// left for the retention scheduler to reap.
func (l Laudo) DeleteLaudoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	laudoID := mux.Vars(r)["laudo_id"]
	lID, err := primitive.ObjectIDFromHex(laudoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := l.DB.FindOne(ctx, bson.M{"_id": lID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("laudo not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get laudo by ID", http.StatusInternalServerError, w, err)
		return
	}
	if err := l.DB.DeleteOne(ctx, bson.M{"_id": lID}); err != nil {
		config.ErrorStatus("failed to delete laudo", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "laudo deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// aggregateStatus maps aggregation failures to HTTP statuses: missing root
// entities are 404, structural problems with the graph are 400, anything
// else is a server fault.
func aggregateStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrVitimaNaoEncontrada),
		errors.Is(err, pipeline.ErrCasoNaoEncontrado),
		errors.Is(err, pipeline.ErrPeritoNaoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrVitimaSemCaso),
		errors.Is(err, pipeline.ErrSemEvidencias):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
