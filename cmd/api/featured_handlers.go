package main

import (
	"context"
	"net/http"
	"time"

	"celflicks/internal/catalog"
	"celflicks/internal/domain/videos"

	"github.com/go-chi/chi/v5"
)

type featuredStateResponse struct {
	VideoID  string          `json:"videoId"`
	Category videos.Category `json:"category"`
	Featured bool            `json:"featured"`
	Videos   []videoResponse `json:"videos"`
}

// featuredTarget reads {category} and {videoID}, writing a 400 and
// returning false when the category is unknown.
func (app *application) featuredTarget(w http.ResponseWriter, r *http.Request) (videos.Category, string, bool) {
	c, err := videos.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return "", "", false
	}
	return c, chi.URLParam(r, "videoID"), true
}

func (app *application) featuredState(c videos.Category, videoID string) featuredStateResponse {
	return featuredStateResponse{
		VideoID:  videoID,
		Category: c,
		Featured: app.catalog.IsFeatured(videoID, c),
		Videos:   newVideoResponses(app.catalog.Featured(c)),
	}
}

// FeatureVideo godoc
//
//	@Summary		Feature a video (Admin)
//	@Description	Appends the video to the end of the category. Featuring it twice in the same category is a conflict.
//	@Tags			Admin
//	@Produce		json
//	@Param			category	path		string	true	"Category"
//	@Param			videoID		path		string	true	"Video ID"
//	@Success		200			{object}	featuredStateResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		409			{object}	error	"Already featured"
//	@Security		ApiKeyAuth
//	@Router			/admin/featured/{category}/{videoID} [put]
func (app *application) featureVideoHandler(w http.ResponseWriter, r *http.Request) {
	c, id, ok := app.featuredTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.catalog.Feature(ctx, id, c); err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, app.featuredState(c, id))
}

// UnfeatureVideo godoc
//
//	@Summary		Unfeature a video (Admin)
//	@Description	Removes the video from the category and closes the gap. A video that is not featured there is left alone.
//	@Tags			Admin
//	@Produce		json
//	@Param			category	path		string	true	"Category"
//	@Param			videoID		path		string	true	"Video ID"
//	@Success		200			{object}	featuredStateResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		502			{object}	error	"Data service error"
//	@Security		ApiKeyAuth
//	@Router			/admin/featured/{category}/{videoID} [delete]
func (app *application) unfeatureVideoHandler(w http.ResponseWriter, r *http.Request) {
	c, id, ok := app.featuredTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.catalog.Unfeature(ctx, id, c); err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, app.featuredState(c, id))
}

// ToggleFeatured godoc
//
//	@Summary		Toggle featured (Admin)
//	@Description	Features the video if it is not in the category, otherwise unfeatures it.
//	@Tags			Admin
//	@Produce		json
//	@Param			category	path		string	true	"Category"
//	@Param			videoID		path		string	true	"Video ID"
//	@Success		200			{object}	featuredStateResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/admin/featured/{category}/{videoID}/toggle [post]
func (app *application) toggleFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	c, id, ok := app.featuredTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := catalog.Toggle(ctx, app.catalog, id, c); err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, app.featuredState(c, id))
}

// MoveFeatured godoc
//
//	@Summary		Reorder a featured video (Admin)
//	@Description	Swaps the video with its neighbour. Moving the first item up or the last item down does nothing.
//	@Tags			Admin
//	@Produce		json
//	@Param			category	path		string	true	"Category"
//	@Param			videoID		path		string	true	"Video ID"
//	@Param			direction	query		string	true	"up or down"
//	@Success		200			{object}	featuredStateResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Not featured"
//	@Failure		502			{object}	error	"Data service error"
//	@Security		ApiKeyAuth
//	@Router			/admin/featured/{category}/{videoID}/move [post]
func (app *application) moveFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	c, id, ok := app.featuredTarget(w, r)
	if !ok {
		return
	}

	d, err := catalog.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.catalog.Move(ctx, id, c, d); err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, app.featuredState(c, id))
}

// RefreshCatalog godoc
//
//	@Summary		Reload the catalog (Admin)
//	@Description	Re-reads every video and featured entry from the data service. On failure the previous catalog keeps serving.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	catalog.Status
//	@Failure		409	{object}	error	"Superseded by a newer fetch"
//	@Failure		502	{object}	error	"Data service error"
//	@Security		ApiKeyAuth
//	@Router			/admin/catalog/refresh [post]
func (app *application) refreshCatalogHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := app.catalog.FetchAll(ctx); err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, app.catalog.Status())
}

// CatalogStatus godoc
//
//	@Summary		Catalog request state (Admin)
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	catalog.Status
//	@Security		ApiKeyAuth
//	@Router			/admin/catalog/status [get]
func (app *application) catalogStatusHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, app.catalog.Status())
}
