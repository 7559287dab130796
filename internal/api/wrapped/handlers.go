// internal/api/wrapped/handlers.go
package wrapped

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/saf-wrapped/internal/api/apiutil"
	"github.com/codr1/saf-wrapped/internal/reservations"
	"github.com/codr1/saf-wrapped/internal/stats"
)

const (
	uploadField         = "file"
	defaultMaxBodyBytes = 5 << 20
	multipartMemory     = 1 << 20
)

type settings struct {
	options  stats.Options
	maxBytes int64
}

var (
	current     settings
	currentOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(opts stats.Options, maxBytes int64) {
	currentOnce.Do(func() {
		if maxBytes <= 0 {
			maxBytes = defaultMaxBodyBytes
		}
		current = settings{options: opts, maxBytes: maxBytes}
	})
}

func loadSettings() settings {
	InitHandlers(stats.DefaultOptions(), defaultMaxBodyBytes)
	return current
}

// HandleUpload turns an uploaded reservation export into statistics.
// POST /api/v1/wrapped
func HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		apiutil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	cfg := loadSettings()
	logger := log.Ctx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, cfg.maxBytes)

	content, err := readUpload(r)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	records, report, err := reservations.ParseWithReport(content)
	if err != nil {
		if errors.Is(err, reservations.ErrEmptyInput) {
			apiutil.WriteHandlerError(w, r, apiutil.HandlerError{
				Status:  http.StatusBadRequest,
				Message: "could not read file",
				Err:     err,
			})
			return
		}
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	if report.Skipped > 0 {
		logger.Debug().
			Int("lines", report.Lines).
			Int("skipped", report.Skipped).
			Msg("Skipped malformed reservation rows")
	}

	result := stats.CalculateWithOptions(records, cfg.options)
	logger.Info().
		Int("reservations", result.TotalReservations).
		Int("unique_days", result.UniqueDays).
		Msg("Computed reservation statistics")

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write statistics response")
	}
}

// readUpload returns the export either from the multipart "file" field or
// from the raw request body.
func readUpload(r *http.Request) (string, error) {
	var body io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", uploadError(err)
		}
		file, _, err := r.FormFile(uploadField)
		if err != nil {
			return "", apiutil.HandlerError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("missing %q form field", uploadField),
				Err:     err,
			}
		}
		defer file.Close()
		body = file
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", uploadError(err)
	}
	return string(data), nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apiutil.HandlerError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: "file too large",
			Err:     err,
		}
	}
	return apiutil.HandlerError{
		Status:  http.StatusBadRequest,
		Message: "could not read file",
		Err:     err,
	}
}
