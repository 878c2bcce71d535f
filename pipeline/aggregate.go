package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odontolegal/odontolegal-api/databases"
	"github.com/odontolegal/odontolegal-api/models"
)

// Aggregation failures the handlers translate into HTTP statuses.
var (
	ErrVitimaNaoEncontrada = errors.New("vítima não encontrada")
	ErrCasoNaoEncontrado   = errors.New("caso não encontrado")
	ErrPeritoNaoEncontrado = errors.New("perito não encontrado")
	ErrVitimaSemCaso       = errors.New("vítima não está vinculada a um caso")
	ErrSemEvidencias       = errors.New("nenhuma evidência vinculada")
)

// LaudoSnapshot is the consistent in-memory view of everything a laudo
// document needs: the victim, its owning case, the responsible examiner and
// every evidence item collected for the victim.
type LaudoSnapshot struct {
	Vitima     models.Vitima
	Caso       models.Caso
	Perito     models.Perito
	Evidencias []models.Evidencia
	Coletores  map[string]string
}

// RelatorioSnapshot is the case-level equivalent: the case, all its evidence,
// the de-duplicated victims referenced by that evidence, and any laudos
// already produced for those victims.
type RelatorioSnapshot struct {
	Caso       models.Caso
	Evidencias []models.Evidencia
	Vitimas    []models.Vitima
	Laudos     []models.Laudo
	Coletores  map[string]string
}

// Aggregator resolves and loads the entity graph behind a laudo or relatorio.
// All lookups are read-only.
type Aggregator struct {
	Casos      databases.CasoDatabase
	Vitimas    databases.VitimaDatabase
	Evidencias databases.EvidenciaDatabase
	Peritos    databases.PeritoDatabase
	Laudos     databases.LaudoDatabase
}

// LaudoSnapshot loads the graph for a laudo rooted at a victim and examiner.
func (a Aggregator) LaudoSnapshot(ctx context.Context, vitimaID, peritoID string) (*LaudoSnapshot, error) {
	vID, err := primitive.ObjectIDFromHex(vitimaID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVitimaNaoEncontrada, err)
	}
	pID, err := primitive.ObjectIDFromHex(peritoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeritoNaoEncontrado, err)
	}

	vitima, err := a.Vitimas.FindOne(ctx, bson.M{"_id": vID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVitimaNaoEncontrada
		}
		return nil, err
	}
	if vitima.CasoID == "" {
		return nil, ErrVitimaSemCaso
	}

	cID, err := primitive.ObjectIDFromHex(vitima.CasoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCasoNaoEncontrado, err)
	}
	caso, err := a.Casos.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCasoNaoEncontrado
		}
		return nil, err
	}

	perito, err := a.Peritos.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPeritoNaoEncontrado
		}
		return nil, err
	}

	evidencias, err := a.Evidencias.Find(ctx, bson.M{"vitimaId": vitimaID})
	if err != nil {
		return nil, err
	}
	if len(evidencias) == 0 {
		return nil, ErrSemEvidencias
	}

	coletores, err := a.coletores(ctx, evidencias)
	if err != nil {
		return nil, err
	}

	return &LaudoSnapshot{
		Vitima:     *vitima,
		Caso:       *caso,
		Perito:     *perito,
		Evidencias: evidencias,
		Coletores:  coletores,
	}, nil
}

// RelatorioSnapshot loads the graph for a relatorio rooted at a case.
func (a Aggregator) RelatorioSnapshot(ctx context.Context, casoID string) (*RelatorioSnapshot, error) {
	cID, err := primitive.ObjectIDFromHex(casoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCasoNaoEncontrado, err)
	}
	caso, err := a.Casos.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCasoNaoEncontrado
		}
		return nil, err
	}

	evidencias, err := a.Evidencias.Find(ctx, bson.M{"casoId": casoID})
	if err != nil {
		return nil, err
	}
	if len(evidencias) == 0 {
		return nil, ErrSemEvidencias
	}

	vitimaIDs := make([]primitive.ObjectID, 0, len(evidencias))
	seen := map[string]bool{}
	vitimaHexes := make([]string, 0, len(evidencias))
	for _, ev := range evidencias {
		if ev.VitimaID == "" || seen[ev.VitimaID] {
			continue
		}
		seen[ev.VitimaID] = true
		id, err := primitive.ObjectIDFromHex(ev.VitimaID)
		if err != nil {
			continue
		}
		vitimaIDs = append(vitimaIDs, id)
		vitimaHexes = append(vitimaHexes, ev.VitimaID)
	}
	if len(vitimaIDs) == 0 {
		return nil, ErrVitimaNaoEncontrada
	}

	vitimas, err := a.Vitimas.Find(ctx, bson.M{"_id": bson.M{"$in": vitimaIDs}})
	if err != nil {
		return nil, err
	}
	if len(vitimas) == 0 {
		return nil, ErrVitimaNaoEncontrada
	}

	laudos, err := a.Laudos.Find(ctx, bson.M{"vitimaId": bson.M{"$in": vitimaHexes}})
	if err != nil {
		return nil, err
	}

	coletores, err := a.coletores(ctx, evidencias)
	if err != nil {
		return nil, err
	}

	return &RelatorioSnapshot{
		Caso:       *caso,
		Evidencias: evidencias,
		Vitimas:    vitimas,
		Laudos:     laudos,
		Coletores:  coletores,
	}, nil
}

// coletores resolves the distinct collector ids of the evidence set into a
// id -> nome map for the renderer and the narrative prompt.
func (a Aggregator) coletores(ctx context.Context, evidencias []models.Evidencia) (map[string]string, error) {
	ids := make([]primitive.ObjectID, 0, len(evidencias))
	seen := map[string]bool{}
	for _, ev := range evidencias {
		if ev.ColetadoPor == "" || seen[ev.ColetadoPor] {
			continue
		}
		seen[ev.ColetadoPor] = true
		id, err := primitive.ObjectIDFromHex(ev.ColetadoPor)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	nomes := map[string]string{}
	if len(ids) == 0 {
		return nomes, nil
	}
	peritos, err := a.Peritos.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, p := range peritos {
		nomes[p.ID.Hex()] = p.Nome
	}
	return nomes, nil
}
