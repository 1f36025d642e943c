package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medscan/medscan/internal/domain/extraction"
	"github.com/medscan/medscan/internal/domain/reference"
	"github.com/medscan/medscan/internal/platform/narrative"
	"github.com/medscan/medscan/internal/platform/ocr"
)

// Store persists finished analyses. The pipeline works identically without
// one; persistence is a collaborator, not a dependency.
type Store interface {
	SaveAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]*Analysis, int, error)
}

// Service runs the request-scoped pipeline for both entry paths. It holds
// no per-request state; concurrent analyses share nothing but the immutable
// registry.
type Service struct {
	reg      *reference.Registry
	reader   DocumentReader
	store    Store
	narrator narrative.Generator
	log      zerolog.Logger
}

func NewService(reg *reference.Registry, reader DocumentReader, log zerolog.Logger) *Service {
	return &Service{reg: reg, reader: reader, log: log}
}

// SetStore attaches the optional persistence collaborator.
func (s *Service) SetStore(store Store) { s.store = store }

// SetNarrator attaches the optional narrative collaborator.
func (s *Service) SetNarrator(g narrative.Generator) { s.narrator = g }

// DocumentRequest is the extraction-path input: raw document bytes plus the
// context needed for classification.
type DocumentRequest struct {
	Data    []byte
	Panel   reference.Panel
	Patient reference.PatientContext
}

// ManualEntry is one manually entered (parameter, value, unit) tuple.
type ManualEntry struct {
	ParameterID string  `json:"parameter_id"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
}

// ManualRequest is the manual-entry-path input.
type ManualRequest struct {
	Entries []ManualEntry            `json:"entries"`
	Panel   reference.Panel          `json:"panel"`
	Patient reference.PatientContext `json:"patient"`
}

// AnalyzeDocument runs the full document pipeline: read text, normalize,
// extract, convert units, classify, detect patterns, assemble. Fatal errors
// are returned bare with no partial result list.
func (s *Service) AnalyzeDocument(ctx context.Context, req DocumentRequest) (*Analysis, error) {
	if err := req.Patient.Validate(); err != nil {
		return nil, fmt.Errorf("patient context: %w", err)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	read, err := s.reader.Read(ctx, req.Data)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if read.LowConfidence() {
		warnings = append(warnings,
			fmt.Sprintf("recognition confidence %.0f is below %.0f; verify extracted values manually",
				read.Confidence, ocr.ConfidenceFloor))
	}

	text := extraction.NormalizeText(read.Text)
	params := extraction.Extract(text, req.Panel)
	if len(params) == 0 {
		return nil, fmt.Errorf("panel %s: %w", req.Panel, extraction.ErrNoParameters)
	}
	params = extraction.NormalizeUnits(params, s.reg, s.log)

	results, err := s.classify(params, req.Patient)
	if err != nil {
		return nil, err
	}

	confidence := read.Confidence
	return s.assemble(ctx, req.Panel, req.Patient, results, &confidence, warnings), nil
}

// AnalyzeManual runs the manual-entry path. Unknown parameter ids are
// malformed input and fail the whole request.
func (s *Service) AnalyzeManual(ctx context.Context, req ManualRequest) (*Analysis, error) {
	if err := req.Patient.Validate(); err != nil {
		return nil, fmt.Errorf("patient context: %w", err)
	}
	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("no entries provided")
	}

	params := make([]extraction.ExtractedParameter, 0, len(req.Entries))
	for _, e := range req.Entries {
		if _, err := s.reg.Get(e.ParameterID); err != nil {
			return nil, err
		}
		params = append(params, extraction.ExtractedParameter{
			ParameterID: e.ParameterID,
			RawValue:    e.Value,
			RawUnit:     e.Unit,
		})
	}
	params = extraction.NormalizeUnits(params, s.reg, s.log)

	results, err := s.classify(params, req.Patient)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, req.Panel, req.Patient, results, nil, nil), nil
}

// GetAnalysis loads a stored analysis. Only available with a store attached.
func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no analysis store configured")
	}
	return s.store.GetAnalysis(ctx, id)
}

// ListAnalyses pages through stored analyses, newest first. Only available
// with a store attached.
func (s *Service) ListAnalyses(ctx context.Context, limit, offset int) ([]*Analysis, int, error) {
	if s.store == nil {
		return nil, 0, fmt.Errorf("no analysis store configured")
	}
	return s.store.ListAnalyses(ctx, limit, offset)
}

func (s *Service) classify(params []extraction.ExtractedParameter, pc reference.PatientContext) ([]MedicalResult, error) {
	results := make([]MedicalResult, 0, len(params))
	for _, p := range params {
		def, err := s.reg.Get(p.ParameterID)
		if err != nil {
			return nil, err
		}
		res, err := Validate(p.Value, def, pc)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// assemble merges results and patterns into the panel-level record, attaches
// the summary, and hands the record to collaborators best-effort.
func (s *Service) assemble(ctx context.Context, panel reference.Panel, pc reference.PatientContext,
	results []MedicalResult, confidence *float64, warnings []string) *Analysis {

	a := &Analysis{
		ID:            uuid.New(),
		TestType:      panel,
		Patient:       pc,
		Results:       results,
		Patterns:      DetectPatterns(results),
		OCRConfidence: confidence,
		Warnings:      warnings,
		CreatedAt:     time.Now().UTC(),
	}
	a.Summary = s.summarize(ctx, a)

	if s.store != nil {
		if err := s.store.SaveAnalysis(ctx, a); err != nil {
			s.log.Error().Err(err).Str("analysis_id", a.ID.String()).Msg("persisting analysis failed")
		}
	}
	return a
}

// summarize asks the narrative collaborator for a summary and falls back to
// the deterministic rule-based one when it is absent or fails.
func (s *Service) summarize(ctx context.Context, a *Analysis) string {
	req := narrativeRequest(a)
	if s.narrator != nil {
		text, err := s.narrator.Generate(ctx, req)
		if err == nil {
			return text
		}
		s.log.Warn().Err(err).Msg("narrative generation failed, using rule-based summary")
	}
	return narrative.RuleBasedSummary(req)
}

func narrativeRequest(a *Analysis) narrative.Request {
	req := narrative.Request{
		TestType:   string(a.TestType),
		PatientAge: a.Patient.Age,
		PatientSex: string(a.Patient.Sex),
	}
	for _, r := range a.Results {
		req.Results = append(req.Results, narrative.ResultLine{
			Parameter: r.DisplayName,
			Value:     r.Value,
			Unit:      r.Unit,
			Status:    string(r.Status),
			Risk:      string(r.RiskLevel),
		})
	}
	for _, p := range a.Patterns {
		req.Patterns = append(req.Patterns, string(p))
	}
	return req
}
