package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"salvagedb/pkg/auth"
	"salvagedb/pkg/compress"
	"salvagedb/pkg/imaging"
	"salvagedb/pkg/inventory"
	"salvagedb/pkg/log"
	"salvagedb/pkg/models"
	"salvagedb/pkg/record"
)

func (srv *Server) submitItem(ctx echo.Context) error {
	log.Info().Msg("Submission request received")

	form, err := ctx.MultipartForm()
	if err != nil {
		log.Error().Err(err).Msg("Multipart form is required")
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "multipart form is required",
		})
	}

	sub, err := parseSubmission(callerIdentity(ctx), form)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	result, err := srv.svc.Submit(ctx.Request().Context(), *sub)
	if err != nil {
		if errors.Is(err, record.ErrValidation) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}
		if errors.Is(err, imaging.ErrUnsupportedImageFormat) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "unsupported image format",
			})
		}
		log.Error().Err(err).Msg("Failed to process submission")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to process submission",
		})
	}

	return ctx.JSON(http.StatusCreated, result)
}

// parseSubmission binds the multipart form onto a Submission. Scalar field
// validation beyond type conversion happens in the service.
func parseSubmission(owner auth.Identity, form *multipart.Form) (*inventory.Submission, error) {
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	sub := &inventory.Submission{
		Owner: owner,
		UID:   value("uid"),
		Item: models.Item{
			SpecID:     value("spec_id"),
			Name:       value("name"),
			Material:   value("material"),
			Unit:       value("unit"),
			Notes:      value("notes"),
			ModelScale: value("model_scale"),
		},
	}

	if raw := value("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("invalid amount")
		}
		sub.Item.Amount = amount
	}
	if raw := value("quality"); raw != "" {
		quality, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("invalid quality")
		}
		sub.ImageQuality = quality
	}
	if raw := value("lock_uid"); raw != "" {
		locked, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("invalid lock_uid")
		}
		sub.LockUID = locked
	}
	if raw := value("lock_assets"); raw != "" {
		locked, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("invalid lock_assets")
		}
		sub.LockAssets = locked
	}
	if raw := value("model_compression"); raw != "" {
		algo := compress.Algorithm(raw)
		if !compress.Valid(algo) {
			return nil, errors.New("invalid model_compression")
		}
		sub.ModelCompression = algo
	}
	if raw := value("source"); raw != "" {
		sub.Item.Source = &models.Provenance{}
		if err := json.Unmarshal([]byte(raw), sub.Item.Source); err != nil {
			return nil, errors.New("invalid source")
		}
	}
	if raw := value("origin"); raw != "" {
		sub.Item.Origin = &models.Provenance{}
		if err := json.Unmarshal([]byte(raw), sub.Item.Origin); err != nil {
			return nil, errors.New("invalid origin")
		}
	}

	for _, header := range form.File["images"] {
		file, err := readUpload(header)
		if err != nil {
			return nil, err
		}
		sub.Images = append(sub.Images, *file)
	}
	if headers := form.File["model"]; len(headers) > 0 {
		file, err := readUpload(headers[0])
		if err != nil {
			return nil, err
		}
		sub.Model = file
	}

	return sub, nil
}

func readUpload(header *multipart.FileHeader) (*models.UploadFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, errors.New("failed to open uploaded file")
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close uploaded file")
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.New("failed to read uploaded file")
	}
	return &models.UploadFile{Name: header.Filename, Data: data}, nil
}
