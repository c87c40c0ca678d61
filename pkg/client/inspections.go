package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inspecta/inspecta/pkg/models"
)

// InspectionTypes lists the inspection categories the backend knows.
func (c *Client) InspectionTypes(ctx context.Context) ([]models.InspectionType, error) {
	return list[models.InspectionType](ctx, c, "/inspections/types/", nil)
}

// Inspections lists inspections, newest first per backend default.
func (c *Client) Inspections(ctx context.Context, query url.Values) ([]*models.Inspection, error) {
	return list[*models.Inspection](ctx, c, "/inspections/inspections/", query)
}

// InspectionByID fetches one inspection record.
func (c *Client) InspectionByID(ctx context.Context, id int) (*models.Inspection, error) {
	var inspection models.Inspection

	path := fmt.Sprintf("/inspections/inspections/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &inspection); err != nil {
		return nil, err
	}

	return &inspection, nil
}

// CreateInspection creates a new inspection record and returns it with
// its server-assigned ID.
func (c *Client) CreateInspection(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error) {
	var created models.Inspection

	if err := c.do(ctx, http.MethodPost, "/inspections/inspections/", nil, inspection, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// StartInspection marks an inspection as started.
func (c *Client) StartInspection(ctx context.Context, id int) error {
	path := fmt.Sprintf("/inspections/inspections/%d/start/", id)

	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// CompleteInspection marks an inspection as completed.
func (c *Client) CompleteInspection(ctx context.Context, id int) error {
	path := fmt.Sprintf("/inspections/inspections/%d/complete/", id)

	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// PhotoUpload is the multipart payload for attaching a captured photo to
// an inspection. Optional fields are omitted when empty.
type PhotoUpload struct {
	InspectionID int
	Photo        *models.CapturedPhoto
	Description  string
}

// UploadPhoto posts one photo as multipart form data, including the
// best-effort geolocation and device fields when present.
func (c *Client) UploadPhoto(ctx context.Context, upload PhotoUpload) error {
	if upload.Photo == nil {
		return fmt.Errorf("photo upload requires a captured photo")
	}

	body, contentType, err := encodePhotoForm(upload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/inspections/photos/", nil, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentType)

	return c.send(req, nil)
}

func encodePhotoForm(upload PhotoUpload) (io.Reader, string, error) {
	photo := upload.Photo

	var buffer bytes.Buffer

	writer := multipart.NewWriter(&buffer)

	fields := map[string]string{
		"inspection":  strconv.Itoa(upload.InspectionID),
		"title":       photo.Title,
		"description": upload.Description,
	}

	if photo.Location != nil {
		fields["latitude"] = strconv.FormatFloat(photo.Location.Latitude, 'f', -1, 64)
		fields["longitude"] = strconv.FormatFloat(photo.Location.Longitude, 'f', -1, 64)
	}

	if photo.Device != nil {
		fields["device_model"] = photo.Device.Model
		fields["device_os"] = photo.Device.OS
	}

	for name, value := range fields {
		if value == "" {
			continue
		}

		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile("photo", photo.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create photo form part: %w", err)
	}

	if _, err := part.Write(photo.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write photo data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &buffer, writer.FormDataContentType(), nil
}
