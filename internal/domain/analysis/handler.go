package analysis

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medscan/medscan/internal/domain/extraction"
	"github.com/medscan/medscan/internal/domain/reference"
	"github.com/medscan/medscan/internal/platform/docimage"
	"github.com/medscan/medscan/internal/platform/ocr"
	"github.com/medscan/medscan/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/analyses/document", h.AnalyzeDocument)
	g.POST("/analyses/manual", h.AnalyzeManual)
	g.GET("/analyses", h.ListAnalyses)
	g.GET("/analyses/:id", h.GetAnalysis)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeDocument accepts a multipart upload (field "document") plus panel,
// age and sex form fields, and runs the extraction path.
func (h *Handler) AnalyzeDocument(c echo.Context) error {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "document file is required", Code: "missing_document"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "cannot open upload", Code: "bad_upload"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "cannot read upload", Code: "bad_upload"})
	}

	patient, err := patientFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "bad_patient_context"})
	}

	a, err := h.svc.AnalyzeDocument(c.Request().Context(), DocumentRequest{
		Data:    data,
		Panel:   reference.Panel(c.FormValue("panel")),
		Patient: patient,
	})
	if err != nil {
		return analysisError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// AnalyzeManual accepts the manual-entry path as JSON.
func (h *Handler) AnalyzeManual(c echo.Context) error {
	var req ManualRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Code: "bad_request"})
	}
	a, err := h.svc.AnalyzeManual(c.Request().Context(), req)
	if err != nil {
		return analysisError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// ListAnalyses returns stored analyses, newest first, as a paginated page.
func (h *Handler) ListAnalyses(c echo.Context) error {
	p := pagination.FromContext(c)
	analyses, total, err := h.svc.ListAnalyses(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "list failed", Code: "internal"})
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(analyses, total, p.Limit, p.Offset))
}

// GetAnalysis returns a stored analysis by id.
func (h *Handler) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid analysis id", Code: "bad_id"})
	}
	a, err := h.svc.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrAnalysisNotFound) {
			return c.JSON(http.StatusNotFound, errorBody{Error: "analysis not found", Code: "not_found"})
		}
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "lookup failed", Code: "internal"})
	}
	return c.JSON(http.StatusOK, a)
}

func patientFromForm(c echo.Context) (reference.PatientContext, error) {
	age, err := strconv.Atoi(c.FormValue("age"))
	if err != nil {
		return reference.PatientContext{}, errors.New("age must be an integer")
	}
	pc := reference.PatientContext{Age: age, Sex: reference.Sex(c.FormValue("sex"))}
	if err := pc.Validate(); err != nil {
		return reference.PatientContext{}, err
	}
	return pc, nil
}

// analysisError maps pipeline failures onto the response taxonomy: each
// fatal condition gets a distinct machine-readable code so the caller can
// render the right retry or manual-entry prompt.
func analysisError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, docimage.ErrDecode):
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "document could not be decoded", Code: "decode_failed"})
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error: "text recognition failed; please enter values manually", Code: "ocr_failed"})
	case errors.Is(err, extraction.ErrNoParameters):
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error: "no recognizable parameters found in document; please enter values manually", Code: "no_parameters"})
	case errors.Is(err, reference.ErrUnknownParameter):
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: err.Error(), Code: "unknown_parameter"})
	default:
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Code: "bad_request"})
	}
}
