package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"celflicks/internal/domain/videos"

	"github.com/go-chi/chi/v5"
)

type videoPayload struct {
	Title        string   `json:"title" validate:"required,max=255"`
	SourceURL    string   `json:"sourceUrl" validate:"required,max=2048"`
	Description  string   `json:"description" validate:"omitempty,max=5000"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	ThumbnailURL string   `json:"thumbnailUrl" validate:"omitempty,url,max=2048"`
}

// createVideoPayload also lets the admin form place the new video straight
// into homepage sections.
type createVideoPayload struct {
	videoPayload
	Categories []string `json:"categories" validate:"omitempty,unique,dive,category"`
}

func (p videoPayload) video() videos.Video {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return videos.Video{
		Title:        strings.TrimSpace(p.Title),
		SourceURL:    strings.TrimSpace(p.SourceURL),
		Description:  strings.TrimSpace(p.Description),
		Tags:         tags,
		ThumbnailURL: strings.TrimSpace(p.ThumbnailURL),
	}
}

type createVideoResponse struct {
	Video       videoResponse     `json:"video"`
	FeaturedIn  []videos.Category `json:"featuredIn"`
	FeatureErrs map[string]string `json:"featureErrors,omitempty"`
}

// CreateVideo godoc
//
//	@Summary		Add a video (Admin)
//	@Description	Creates the video in the data service and adds it to the catalog. Platform and external id are derived from sourceUrl. Categories, if given, are featured after the create; a failed feature does not undo the create.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createVideoPayload	true	"Video"
//	@Success		201		{object}	createVideoResponse
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		502		{object}	error	"Data service error"
//	@Security		ApiKeyAuth
//	@Router			/admin/videos [post]
func (app *application) createVideoHandler(w http.ResponseWriter, r *http.Request) {
	var payload createVideoPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	created, err := app.catalog.Add(ctx, payload.video())
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	out := createVideoResponse{Video: newVideoResponse(*created), FeaturedIn: []videos.Category{}}
	for _, name := range payload.Categories {
		c, _ := videos.ParseCategory(name)
		if err := app.catalog.Feature(ctx, created.ID, c); err != nil {
			if out.FeatureErrs == nil {
				out.FeatureErrs = map[string]string{}
			}
			out.FeatureErrs[name] = err.Error()
			continue
		}
		out.FeaturedIn = append(out.FeaturedIn, c)
	}

	app.jsonResponse(w, http.StatusCreated, out)
}

// UpdateVideo godoc
//
//	@Summary		Update a video (Admin)
//	@Description	Replaces the whole record. Featured copies are refreshed in place.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			videoID	path		string			true	"Video ID"
//	@Param			payload	body		videoPayload	true	"Video"
//	@Success		200		{object}	videoResponse
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Not Found"
//	@Failure		502		{object}	error	"Data service error"
//	@Security		ApiKeyAuth
//	@Router			/admin/videos/{videoID} [put]
func (app *application) updateVideoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")

	var payload videoPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := app.catalog.Update(ctx, id, payload.video())
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, newVideoResponse(*updated))
}

// DeleteVideo godoc
//
//	@Summary		Delete a video (Admin)
//	@Description	Removes the video from every category, then deletes it.
//	@Tags			Admin
//	@Param			videoID	path	string	true	"Video ID"
//	@Success		204		"No Content"
//	@Failure		404		{object}	error	"Not Found"
//	@Failure		502		{object}	error	"Data service error"
//	@Security		ApiKeyAuth
//	@Router			/admin/videos/{videoID} [delete]
func (app *application) deleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.catalog.Remove(ctx, id); err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
