// internal/api/handlers.go
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LaporanOCR/internal/config"
	apperrors "github.com/Corphon/LaporanOCR/internal/errors"
	"github.com/Corphon/LaporanOCR/internal/identity"
	"github.com/Corphon/LaporanOCR/internal/ocr"
	"github.com/Corphon/LaporanOCR/internal/report"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

const imageField = "image_file"

// Handler serves the report form and its JSON endpoints.
type Handler struct {
	ocrAdapter *ocr.Adapter
	reports    *report.Service
	extractor  *identity.Extractor
	metrics    *utils.APIMetrics
	logger     *utils.Logger

	maxUploadBytes int64
}

// NewHandler wires the request handlers.
func NewHandler(cfg config.Config, ocrAdapter *ocr.Adapter, reports *report.Service, extractor *identity.Extractor, logger *utils.Logger, metrics *utils.APIMetrics) *Handler {
	return &Handler{
		ocrAdapter:     ocrAdapter,
		reports:        reports,
		extractor:      extractor,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes(),
	}
}

// IndexPage serves the report form.
func (h *Handler) IndexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

// OCR accepts a multipart upload in image_file and returns {"text": ...}.
func (h *Handler) OCR(c *gin.Context) {
	data, err := h.readUpload(c)
	if err != nil {
		if apperrors.IsValidationError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.ocrFailed(c, err)
		return
	}

	text, err := h.ocrAdapter.ExtractText(c.Request.Context(), data)
	if err != nil {
		h.ocrFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// readUpload returns the bytes posted in image_file. A missing, empty or
// oversized upload is a validation error carrying the user-facing message.
func (h *Handler) readUpload(c *gin.Context) ([]byte, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apperrors.NewValidationError(MsgImageTooLarge, nil)
		case errors.Is(err, http.ErrMissingFile) && fieldSentWithoutFile(c):
			// browsers post the field with an empty filename when nothing is chosen
			return nil, apperrors.NewValidationError(MsgNoImageSelected, nil)
		default:
			return nil, apperrors.NewValidationError(MsgNoImageUploaded, nil)
		}
	}
	if fh.Filename == "" {
		return nil, apperrors.NewValidationError(MsgNoImageSelected, nil)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (h *Handler) ocrFailed(c *gin.Context, err error) {
	h.logger.Error("ocr failed", map[string]interface{}{
		"request_id": getRequestID(c),
		"error":      err.Error(),
	})
	respondError(c, http.StatusInternalServerError, MsgOCRFailed+err.Error())
}

func fieldSentWithoutFile(c *gin.Context) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	if _, ok := form.Value[imageField]; ok {
		return true
	}
	_, ok := form.File[imageField]
	return ok
}

// ExtractIdentity reads an ID document photo posted in image_file and
// returns the extracted document plus the report identity fields derived
// from it. peran=saksi selects the witness prompt.
func (h *Handler) ExtractIdentity(c *gin.Context) {
	data, err := h.readUpload(c)
	if err != nil {
		if apperrors.IsValidationError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.identityFailed(c, err)
		return
	}

	if !h.extractor.Ready() {
		respondError(c, http.StatusInternalServerError, MsgAPIKeyMissing)
		return
	}

	img, err := documentImage(data)
	if err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidImage)
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), img, identity.ParseRole(c.PostForm("peran")))
	if err != nil {
		h.identityFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// documentImage checks that data decodes. Formats the generative API reads
// natively are sent as they are, the rest as PNG.
func documentImage(data []byte) (identity.Image, error) {
	_, format, err := ocr.Decode(data)
	if err != nil {
		return identity.Image{}, err
	}
	switch format {
	case "jpeg", "png", "webp":
		return identity.Image{Data: data, MimeType: "image/" + format}, nil
	}
	normalized, _, err := ocr.Normalize(data)
	if err != nil {
		return identity.Image{}, err
	}
	return identity.Image{Data: normalized, MimeType: "image/png"}, nil
}

func (h *Handler) identityFailed(c *gin.Context, err error) {
	h.logger.Error("identity extraction failed", map[string]interface{}{
		"request_id": getRequestID(c),
		"type":       string(apperrors.TypeOf(err)),
		"error":      err.Error(),
	})
	respondError(c, apperrors.HTTPStatus(err), reportErrorMessage(err))
}

// GenerateReport accepts the identity fields and chronology as JSON and
// returns the three report sections.
func (h *Handler) GenerateReport(c *gin.Context) {
	req := bindReportRequest(c)

	if !h.reports.Ready() {
		respondError(c, http.StatusInternalServerError, MsgAPIKeyMissing)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reports.Generate(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("report generation failed", map[string]interface{}{
			"request_id": getRequestID(c),
			"type":       string(apperrors.TypeOf(err)),
			"error":      err.Error(),
		})
		respondError(c, apperrors.HTTPStatus(err), reportErrorMessage(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func reportErrorMessage(err error) string {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return err.Error()
	case apperrors.ErrorTypeConfig:
		return MsgAPIKeyMissing
	case apperrors.ErrorTypeUpstream:
		return MsgUpstreamFailed + err.Error()
	case apperrors.ErrorTypeUpstreamMalformed:
		return MsgUpstreamMalformed + err.Error()
	default:
		return MsgUnexpected + err.Error()
	}
}

// bindReportRequest reads the JSON body leniently: a missing or malformed
// body yields empty fields, and numeric values are accepted as strings.
func bindReportRequest(c *gin.Context) report.Request {
	var fields map[string]interface{}
	raw, err := io.ReadAll(c.Request.Body)
	if err == nil && len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			fields = nil
		}
	}

	return report.Request{
		Identity: report.Identity{
			Nama:      stringField(fields, "nama"),
			Umur:      stringField(fields, "umur"),
			Pekerjaan: stringField(fields, "pekerjaan"),
			Alamat:    stringField(fields, "alamat"),
			Kabupaten: stringField(fields, "kabupaten"),
		},
		Kronologis: stringField(fields, "kronologis"),
	}
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			// zero counts as empty
			return ""
		}
		return v.String()
	case bool:
		// false counts as empty
		if v {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

// GetHealth reports readiness of the OCR engine and generation provider.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"ocr_engine":         h.ocrAdapter.EngineName(),
		"llm_provider":       h.reports.ProviderName(),
		"api_key_configured": h.reports.Ready(),
	})
}

// GetMetrics returns a snapshot of the collected counters, gauges and histograms.
func (h *Handler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Collector().GetMetrics())
}
