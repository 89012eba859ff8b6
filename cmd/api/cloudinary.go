package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"celflicks/internal/catalog"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
)

const (
	thumbnailFolder   = "celflicks/thumbnails"
	maxThumbnailBytes = 5 << 20
)

var cloudinaryVersion = regexp.MustCompile(`^v\d+$`)

func (app *application) deletePhotoFromCloudinary(ctx context.Context, photoURL string) error {
	publicID, err := extractPublicIDFromURL(photoURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from Cloudinary: %w", err)
	}

	return nil
}

// extractPublicIDFromURL turns a delivery URL such as
// .../image/upload/v1712/celflicks/thumbnails/video_x.jpg into the public id
// celflicks/thumbnails/video_x.
func extractPublicIDFromURL(photoURL string) (string, error) {
	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if !strings.HasSuffix(parsedURL.Host, "cloudinary.com") {
		return "", errors.New("not a cloudinary URL")
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	for i, part := range pathParts {
		if part != "upload" || i+1 >= len(pathParts) {
			continue
		}
		rest := pathParts[i+1:]
		if len(rest) > 1 && cloudinaryVersion.MatchString(rest[0]) {
			rest = rest[1:]
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}

	return "", errors.New("failed to extract public ID from URL")
}

// uploadToCloudinaryWithID uploads a file to Cloudinary using a custom public ID.
func (app *application) uploadToCloudinaryWithID(ctx context.Context, file io.Reader, publicID string) (string, error) {
	resp, err := app.cld.Upload.Upload(
		ctx,
		file,
		uploader.UploadParams{
			Folder:    thumbnailFolder,
			PublicID:  publicID,
			Overwrite: api.Bool(false),
		},
	)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// UploadThumbnail godoc
//
//	@Summary		Upload a custom thumbnail (Admin)
//	@Description	Stores the image on Cloudinary and sets it as the video's thumbnail override. A previous Cloudinary override is deleted best-effort.
//	@Tags			Admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			videoID		path		string	true	"Video ID"
//	@Param			thumbnail	formData	file	true	"Image file (max 5MB)"
//	@Success		200			{object}	videoResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		502			{object}	error	"Upload failed"
//	@Security		ApiKeyAuth
//	@Router			/admin/videos/{videoID}/thumbnail [post]
func (app *application) uploadThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")

	v, ok := app.catalog.Video(id)
	if !ok {
		app.notFoundResponse(w, r, catalog.ErrVideoNotFound)
		return
	}
	if app.cld == nil {
		app.internalServerError(w, r, errors.New("cloudinary is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxThumbnailBytes+1024)
	if err := r.ParseMultipartForm(maxThumbnailBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid form: %w", err))
		return
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("thumbnail file is required"))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		app.badRequestResponse(w, r, errors.New("thumbnail must be an image"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	publicID := fmt.Sprintf("video_%s_thumb_%d", id, time.Now().UnixNano())
	secureURL, err := app.uploadToCloudinaryWithID(ctx, file, publicID)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	previous := v.ThumbnailURL
	v.ThumbnailURL = secureURL
	updated, err := app.catalog.Update(ctx, id, v)
	if err != nil {
		// the record still points at the old image; drop the orphan
		if derr := app.deletePhotoFromCloudinary(context.Background(), secureURL); derr != nil {
			app.logger.Warnw("failed to delete orphaned thumbnail", "url", secureURL, "error", derr)
		}
		app.catalogErrorResponse(w, r, err)
		return
	}

	if previous != "" {
		if _, err := extractPublicIDFromURL(previous); err == nil {
			if err := app.deletePhotoFromCloudinary(ctx, previous); err != nil {
				app.logger.Warnw("failed to delete previous thumbnail", "url", previous, "error", err)
			}
		}
	}

	app.jsonResponse(w, http.StatusOK, newVideoResponse(*updated))
}
