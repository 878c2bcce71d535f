package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
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

// Relatorio exported for testing purposes
type Relatorio struct {
	DB       databases.RelatorioDatabase
	CDB      databases.CasoDatabase
	PDB      databases.PeritoDatabase
	Agg      pipeline.Aggregator
	Enricher narrative.Enricher
	Exporter pdfexport.Exporter
}

// audioURLPattern accepts only https URLs on the hosts the platform stores
// recorded report audio on.
var audioURLPattern = regexp.MustCompile(`^https://(res\.cloudinary\.com|(www\.)?soundcloud\.com|drive\.google\.com)/`)

type createRelatorioRequest struct {
	CasoID                        string `json:"casoId"`
	Titulo                        string `json:"titulo"`
	Descricao                     string `json:"descricao"`
	ObjetoPericia                 string `json:"objetoPericia"`
	AnaliseTecnica                string `json:"analiseTecnica"`
	MetodoUtilizado               string `json:"metodoUtilizado"`
	Destinatario                  string `json:"destinatario"`
	MateriaisUtilizados           string `json:"materiaisUtilizados"`
	ExamesRealizados              string `json:"examesRealizados"`
	ConsideracoesTecnicoPericiais string `json:"consideracoesTecnicoPericiais"`
	ConclusaoTecnica              string `json:"conclusaoTecnica"`
	AudioURL                      string `json:"audioURL"`
}

// CreateRelatorioHandler generates a case-level relatorio. Unlike laudos it
// is persisted unsigned; signing is a separate explicit step.
func (rel Relatorio) CreateRelatorioHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req createRelatorioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.CasoID == "" {
		config.ErrorStatus("casoId is required", http.StatusBadRequest, w, errors.New("missing required field"))
		return
	}
	if req.AudioURL != "" && !audioURLPattern.MatchString(req.AudioURL) {
		config.ErrorStatus("audioURL host is not allowed", http.StatusBadRequest, w, errors.New("audioURL must be served from cloudinary, soundcloud or google drive over https"))
		return
	}

	ctx := r.Context()
	snap, err := rel.Agg.RelatorioSnapshot(ctx, req.CasoID)
	if err != nil {
		config.ErrorStatus("failed to aggregate relatorio data", aggregateStatus(err), w, err)
		return
	}

	analise, conclusao := req.AnaliseTecnica, req.ConclusaoTecnica
	if analise == "" || conclusao == "" {
		narrativa := rel.Enricher.Gerar(ctx, pipeline.ResumoRelatorio(snap))
		if analise == "" {
			analise = narrativa.Analise
		}
		if conclusao == "" {
			conclusao = narrativa.Conclusao
		}
	}

	evidenciaIDs := make([]string, 0, len(snap.Evidencias))
	for _, ev := range snap.Evidencias {
		evidenciaIDs = append(evidenciaIDs, ev.ID.Hex())
	}
	vitimaIDs := make([]string, 0, len(snap.Vitimas))
	for _, v := range snap.Vitimas {
		vitimaIDs = append(vitimaIDs, v.ID.Hex())
	}
	laudoIDs := make([]string, 0, len(snap.Laudos))
	for _, ld := range snap.Laudos {
		laudoIDs = append(laudoIDs, ld.ID.Hex())
	}

	relatorio := models.Relatorio{
		ID:                            primitive.NewObjectID(),
		Titulo:                        req.Titulo,
		Descricao:                     req.Descricao,
		ObjetoPericia:                 req.ObjetoPericia,
		AnaliseTecnica:                analise,
		MetodoUtilizado:               req.MetodoUtilizado,
		Destinatario:                  req.Destinatario,
		MateriaisUtilizados:           req.MateriaisUtilizados,
		ExamesRealizados:              req.ExamesRealizados,
		ConsideracoesTecnicoPericiais: req.ConsideracoesTecnicoPericiais,
		ConclusaoTecnica:              conclusao,
		CasoID:                        req.CasoID,
		Evidencias:                    evidenciaIDs,
		Vitimas:                       vitimaIDs,
		Laudos:                        laudoIDs,
		AudioURL:                      req.AudioURL,
		Assinado:                      false,
		DataCriacao:                   primitive.NewDateTimeFromTime(time.Now()),
	}

	html := templates.RenderRelatorioHTML(templates.RelatorioDocumento{
		Relatorio:  relatorio,
		Caso:       snap.Caso,
		Vitimas:    snap.Vitimas,
		Evidencias: snap.Evidencias,
		Laudos:     snap.Laudos,
		Coletores:  snap.Coletores,
	})
	pdf, err := rel.Exporter.Export(ctx, html, "criar-relatorio", relatorio.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to export relatorio pdf", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := rel.DB.InsertOne(ctx, relatorio); err != nil {
		config.ErrorStatus("failed to insert new relatorio", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.RelatorioResponse{
		Relatorio: relatorio,
		PDF:       base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SignRelatorioHandler flips the assinado flag of an unsigned relatorio and
// re-exports the PDF with the signature block. The signer is the examiner
// responsible for the relatorio's case, so a broken case relation is a
// server fault rather than a client error.
func (rel Relatorio) SignRelatorioHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	relatorioID := mux.Vars(r)["relatorio_id"]
	rID, err := primitive.ObjectIDFromHex(relatorioID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx := r.Context()
	relatorio, err := rel.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("relatorio not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get relatorio by ID", http.StatusInternalServerError, w, err)
		return
	}
	if relatorio.Assinado {
		config.ErrorStatus("relatorio is already signed", http.StatusBadRequest, w, errors.New("assinado already set"))
		return
	}

	after := options.After
	signed, err := rel.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": rID, "assinado": false},
		bson.M{"$set": bson.M{"assinado": true}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// lost the race: someone signed between the read and the update
			config.ErrorStatus("relatorio is already signed", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to sign relatorio", http.StatusInternalServerError, w, err)
		return
	}

	snap, err := rel.Agg.RelatorioSnapshot(ctx, signed.CasoID)
	if err != nil {
		// the relatorio exists, so its case graph must resolve
		config.ErrorStatus("failed to resolve relatorio case relation", http.StatusInternalServerError, w, err)
		return
	}

	assinante := snap.Caso.PeritoResponsavel
	var perito models.Perito
	if id, err := primitive.ObjectIDFromHex(snap.Caso.PeritoResponsavel); err == nil {
		if p, err := rel.PDB.FindOne(ctx, bson.M{"_id": id}); err == nil {
			perito = *p
			assinante = p.Nome
		}
	}
	if assinante == "" {
		config.ErrorStatus("case has no responsible examiner", http.StatusInternalServerError, w, errors.New("peritoResponsavel not set"))
		return
	}

	html := templates.RenderRelatorioHTML(templates.RelatorioDocumento{
		Relatorio:  *signed,
		Caso:       snap.Caso,
		Vitimas:    snap.Vitimas,
		Evidencias: snap.Evidencias,
		Laudos:     snap.Laudos,
		Coletores:  snap.Coletores,
		Assinante:  assinante,
		AssinadoEm: time.Now(),
	})
	pdf, err := rel.Exporter.Export(ctx, html, "assinar-relatorio", relatorioID)
	if err != nil {
		config.ErrorStatus("failed to export relatorio pdf", http.StatusInternalServerError, w, err)
		return
	}

	if perito.Email != "" {
		go sendDocumentoAssinadoEmail(perito, "Relatório", relatorioID)
	}

	b, err := json.Marshal(models.RelatorioResponse{
		Relatorio: *signed,
		PDF:       base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateRelatorioHandler applies partial edits and re-exports the PDF.
func (rel Relatorio) UpdateRelatorioHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	relatorioID := mux.Vars(r)["relatorio_id"]
	rID, err := primitive.ObjectIDFromHex(relatorioID)
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
		"titulo", "descricao", "objetoPericia", "analiseTecnica",
		"metodoUtilizado", "destinatario", "materiaisUtilizados",
		"examesRealizados", "consideracoesTecnicoPericiais", "conclusaoTecnica",
		"audioURL",
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
	if v, ok := set["audioURL"].(string); ok && v != "" && !audioURLPattern.MatchString(v) {
		config.ErrorStatus("audioURL host is not allowed", http.StatusBadRequest, w, errors.New("audioURL must be served from cloudinary, soundcloud or google drive over https"))
		return
	}

	ctx := r.Context()
	if err := rel.DB.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update relatorio", http.StatusInternalServerError, w, err)
		return
	}
	relatorio, err := rel.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("relatorio not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get relatorio by ID", http.StatusInternalServerError, w, err)
		return
	}

	snap, err := rel.Agg.RelatorioSnapshot(ctx, relatorio.CasoID)
	if err != nil {
		config.ErrorStatus("failed to aggregate relatorio data", aggregateStatus(err), w, err)
		return
	}

	doc := templates.RelatorioDocumento{
		Relatorio:  *relatorio,
		Caso:       snap.Caso,
		Vitimas:    snap.Vitimas,
		Evidencias: snap.Evidencias,
		Laudos:     snap.Laudos,
		Coletores:  snap.Coletores,
	}
	if relatorio.Assinado {
		doc.Assinante = snap.Caso.PeritoResponsavel
		if id, err := primitive.ObjectIDFromHex(snap.Caso.PeritoResponsavel); err == nil {
			if p, err := rel.PDB.FindOne(ctx, bson.M{"_id": id}); err == nil {
				doc.Assinante = p.Nome
			}
		}
		doc.AssinadoEm = time.Now()
	}
	pdf, err := rel.Exporter.Export(ctx, templates.RenderRelatorioHTML(doc), "atualizar-relatorio", relatorioID)
	if err != nil {
		config.ErrorStatus("failed to export relatorio pdf", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.RelatorioResponse{
		Relatorio: *relatorio,
		PDF:       base64.StdEncoding.EncodeToString(pdf),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RelatorioByIDHandler returns a single relatorio document.
func (rel Relatorio) RelatorioByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	relatorioID := mux.Vars(r)["relatorio_id"]
	rID, err := primitive.ObjectIDFromHex(relatorioID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	relatorio, err := rel.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("relatorio not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get relatorio by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(relatorio)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RelatorioHandler returns a filtered, paginated page of relatorios.
func (rel Relatorio) RelatorioHandler(w http.ResponseWriter, r *http.Request) {
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
	if v := r.URL.Query().Get("assinado"); v != "" {
		filter["assinado"] = v == "true"
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := rel.DB.CountDocuments(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to count relatorios", http.StatusInternalServerError, w, err)
		return
	}
	relatorios, err := rel.DB.Find(ctx, filter, databases.PaginatedOpts(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get relatorios", http.StatusInternalServerError, w, err)
		return
	}
	if relatorios == nil {
		relatorios = []models.Relatorio{}
	}

	b, err := json.Marshal(models.RelatorioListResponse{
		Data:  relatorios,
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

// DeleteRelatorioHandler removes a relatorio document.
func (rel Relatorio) DeleteRelatorioHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	relatorioID := mux.Vars(r)["relatorio_id"]
	rID, err := primitive.ObjectIDFromHex(relatorioID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := rel.DB.FindOne(ctx, bson.M{"_id": rID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("relatorio not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get relatorio by ID", http.StatusInternalServerError, w, err)
		return
	}
	if err := rel.DB.DeleteOne(ctx, bson.M{"_id": rID}); err != nil {
		config.ErrorStatus("failed to delete relatorio", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "relatorio deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
