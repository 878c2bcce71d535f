package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/odontolegal/odontolegal-api/api"
	"github.com/odontolegal/odontolegal-api/api/scheduler"
	"github.com/odontolegal/odontolegal-api/config"
	"github.com/odontolegal/odontolegal-api/databases"
	"github.com/odontolegal/odontolegal-api/models"
	"github.com/odontolegal/odontolegal-api/narrative"
	"github.com/odontolegal/odontolegal-api/pdfexport"
	"github.com/odontolegal/odontolegal-api/pipeline"
)

// pipelineTimeout bounds a full generation request: aggregation, narrative
// enrichment, rendering and PDF capture.
const pipelineTimeout = 2 * time.Minute

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Exporter  *pdfexport.BrowserExporter
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
	dbClient  databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewPeritoDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	casoDB := databases.NewCasoDatabase(a.dbHelper)
	vitimaDB := databases.NewVitimaDatabase(a.dbHelper)
	evidenciaDB := databases.NewEvidenciaDatabase(a.dbHelper)
	peritoDB := databases.NewPeritoDatabase(a.dbHelper)
	laudoDB := databases.NewLaudoDatabase(a.dbHelper)
	relatorioDB := databases.NewRelatorioDatabase(a.dbHelper)

	agg := pipeline.Aggregator{
		Casos:      casoDB,
		Vitimas:    vitimaDB,
		Evidencias: evidenciaDB,
		Peritos:    peritoDB,
		Laudos:     laudoDB,
	}
	enricher := narrative.New(a.Config.OpenAIKey)

	caso := Caso{DB: casoDB}
	vitima := Vitima{DB: vitimaDB, EDB: evidenciaDB}
	evidencia := Evidencia{DB: evidenciaDB, VDB: vitimaDB, CDB: casoDB}
	perito := Perito{DB: peritoDB}
	laudo := Laudo{DB: laudoDB, VDB: vitimaDB, CDB: casoDB, EDB: evidenciaDB, PDB: peritoDB, Agg: agg, Enricher: enricher, Exporter: a.Exporter}
	relatorio := Relatorio{DB: relatorioDB, CDB: casoDB, PDB: peritoDB, Agg: agg, Enricher: enricher, Exporter: a.Exporter}
	upload := Upload{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	withTimeout := api.TimeoutMiddleware(pipelineTimeout)

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/casos", api.Middleware(http.HandlerFunc(caso.CreateCasoHandler))).Methods("POST")
	apiCreate.Handle("/casos", api.Middleware(http.HandlerFunc(caso.CasoHandler))).Methods("GET")
	apiCreate.Handle("/casos/{caso_id}", api.Middleware(http.HandlerFunc(caso.CasoByIDHandler))).Methods("GET")
	apiCreate.Handle("/casos/{caso_id}", api.Middleware(http.HandlerFunc(caso.UpdateCasoHandler))).Methods("PUT")
	apiCreate.Handle("/casos/{caso_id}", api.Middleware(http.HandlerFunc(caso.DeleteCasoHandler))).Methods("DELETE")

	apiCreate.Handle("/vitimas", api.Middleware(http.HandlerFunc(vitima.CreateVitimaHandler))).Methods("POST")
	apiCreate.Handle("/vitimas", api.Middleware(http.HandlerFunc(vitima.VitimaHandler))).Methods("GET")
	apiCreate.Handle("/vitimas/{vitima_id}", api.Middleware(http.HandlerFunc(vitima.VitimaByIDHandler))).Methods("GET")
	apiCreate.Handle("/vitimas/{vitima_id}", api.Middleware(http.HandlerFunc(vitima.UpdateVitimaHandler))).Methods("PUT")
	apiCreate.Handle("/vitimas/{vitima_id}", api.Middleware(http.HandlerFunc(vitima.DeleteVitimaHandler))).Methods("DELETE")

	apiCreate.Handle("/evidencias", api.Middleware(http.HandlerFunc(evidencia.CreateEvidenciaHandler))).Methods("POST")
	apiCreate.Handle("/evidencias", api.Middleware(http.HandlerFunc(evidencia.EvidenciaHandler))).Methods("GET")
	apiCreate.Handle("/evidencias/{evidencia_id}", api.Middleware(http.HandlerFunc(evidencia.EvidenciaByIDHandler))).Methods("GET")
	apiCreate.Handle("/evidencias/{evidencia_id}", api.Middleware(http.HandlerFunc(evidencia.UpdateEvidenciaHandler))).Methods("PUT")
	apiCreate.Handle("/evidencias/{evidencia_id}", api.Middleware(http.HandlerFunc(evidencia.DeleteEvidenciaHandler))).Methods("DELETE")

	apiCreate.Handle("/peritos", http.HandlerFunc(perito.CreatePeritoHandler)).Methods("POST")
	apiCreate.Handle("/peritos", api.Middleware(http.HandlerFunc(perito.PeritoHandler))).Methods("GET")
	apiCreate.Handle("/peritos/{perito_id}", api.Middleware(http.HandlerFunc(perito.PeritoByIDHandler))).Methods("GET")
	apiCreate.Handle("/peritos/{perito_id}", api.Middleware(http.HandlerFunc(perito.UpdatePeritoHandler))).Methods("PUT")
	apiCreate.Handle("/peritos/{perito_id}", api.Middleware(http.HandlerFunc(perito.DeletePeritoHandler))).Methods("DELETE")

	apiCreate.Handle("/laudos", api.Middleware(withTimeout(http.HandlerFunc(laudo.CreateLaudoHandler)))).Methods("POST")
	apiCreate.Handle("/laudos", api.Middleware(http.HandlerFunc(laudo.LaudoHandler))).Methods("GET")
	apiCreate.Handle("/laudos/{laudo_id}", api.Middleware(http.HandlerFunc(laudo.LaudoByIDHandler))).Methods("GET")
	apiCreate.Handle("/laudos/{laudo_id}", api.Middleware(withTimeout(http.HandlerFunc(laudo.UpdateLaudoHandler)))).Methods("PUT")
	apiCreate.Handle("/laudos/{laudo_id}", api.Middleware(http.HandlerFunc(laudo.DeleteLaudoHandler))).Methods("DELETE")
	apiCreate.Handle("/laudos/{laudo_id}/sign", api.Middleware(withTimeout(http.HandlerFunc(laudo.SignLaudoHandler)))).Methods("POST")

	apiCreate.Handle("/relatorios", api.Middleware(withTimeout(http.HandlerFunc(relatorio.CreateRelatorioHandler)))).Methods("POST")
	apiCreate.Handle("/relatorios", api.Middleware(http.HandlerFunc(relatorio.RelatorioHandler))).Methods("GET")
	apiCreate.Handle("/relatorios/{relatorio_id}", api.Middleware(http.HandlerFunc(relatorio.RelatorioByIDHandler))).Methods("GET")
	apiCreate.Handle("/relatorios/{relatorio_id}", api.Middleware(withTimeout(http.HandlerFunc(relatorio.UpdateRelatorioHandler)))).Methods("PUT")
	apiCreate.Handle("/relatorios/{relatorio_id}", api.Middleware(http.HandlerFunc(relatorio.DeleteRelatorioHandler))).Methods("DELETE")
	apiCreate.Handle("/relatorios/{relatorio_id}/sign", api.Middleware(withTimeout(http.HandlerFunc(relatorio.SignRelatorioHandler)))).Methods("POST")

	apiCreate.Handle("/upload", api.Middleware(http.HandlerFunc(upload.UploadHandler))).Methods("POST")
	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(upload.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	a.dbClient = client

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("odontolegal-api has connected to the database")

	exporter, err := pdfexport.New(&a.Config)
	if err != nil {
		zap.S().With(err).Error("failed to start pdf exporter")
		return err
	}
	a.Exporter = exporter

	a.Scheduler = scheduler.NewScheduler(a.Config.ArtifactDir)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Shutdown drains background workers and releases external resources.
func (a *App) Shutdown(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Exporter != nil {
		if err := a.Exporter.Close(); err != nil {
			zap.S().Warnw("failed to close pdf exporter", "error", err)
		}
	}
	if a.dbClient != nil {
		if err := a.dbClient.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
