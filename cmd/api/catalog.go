package main

import (
	"errors"
	"net/http"
	"strings"

	"celflicks/internal/catalog"
	"celflicks/internal/domain/videos"
	"celflicks/internal/params"
	"celflicks/internal/platform"

	"github.com/go-chi/chi/v5"
)

// videoResponse is a catalog video with its display fields resolved.
type videoResponse struct {
	videos.Video
	Thumbnail string `json:"thumbnail"`
	EmbedURL  string `json:"embedUrl"`
}

func newVideoResponse(v videos.Video) videoResponse {
	src := platform.Source{Platform: v.Platform, ExternalID: v.ExternalID}
	return videoResponse{
		Video:     v,
		Thumbnail: v.Thumbnail(),
		EmbedURL:  platform.EmbedURL(src, v.SourceURL),
	}
}

func newVideoResponses(list []videos.Video) []videoResponse {
	out := make([]videoResponse, 0, len(list))
	for _, v := range list {
		out = append(out, newVideoResponse(v))
	}
	return out
}

type videoListResponse struct {
	Videos     []videoResponse   `json:"videos"`
	Pagination params.Pagination `json:"pagination"`
}

// ListVideos godoc
//
//	@Summary		List catalog videos
//	@Description	Paginated list of every video, oldest first. Optional filters by platform, tag and title text.
//	@Tags			Catalog
//	@Produce		json
//	@Param			page		query		int		false	"Page (default: 1)"
//	@Param			limit		query		int		false	"Limit (default: 24, max: 100)"
//	@Param			platform	query		string	false	"youtube, vimeo, direct or other"
//	@Param			tag			query		string	false	"Only videos carrying this tag"
//	@Param			q			query		string	false	"Case-insensitive title search"
//	@Success		200			{object}	videoListResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Router			/catalog/videos [get]
func (app *application) listVideosHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	var plat platform.Platform
	if s := strings.TrimSpace(q.Get("platform")); s != "" {
		plat = platform.Platform(strings.ToLower(s))
		if !plat.Valid() {
			app.badRequestResponse(w, r, errors.New("invalid platform"))
			return
		}
	}
	tag := strings.TrimSpace(q.Get("tag"))
	search := strings.ToLower(strings.TrimSpace(q.Get("q")))

	all := app.catalog.Videos()
	filtered := all[:0:0]
	for _, v := range all {
		if plat != "" && v.Platform != plat {
			continue
		}
		if tag != "" && !hasTag(v.Tags, tag) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Title), search) {
			continue
		}
		filtered = append(filtered, v)
	}

	p.ComputeMeta(len(filtered))
	start, end := p.Bounds(len(filtered))

	app.jsonResponse(w, http.StatusOK, videoListResponse{
		Videos:     newVideoResponses(filtered[start:end]),
		Pagination: p,
	})
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// GetVideo godoc
//
//	@Summary		Get a catalog video
//	@Tags			Catalog
//	@Produce		json
//	@Param			videoID	path		string	true	"Video ID"
//	@Success		200		{object}	videoResponse
//	@Failure		404		{object}	error	"Not Found"
//	@Router			/catalog/videos/{videoID} [get]
func (app *application) getVideoHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := app.catalog.Video(chi.URLParam(r, "videoID"))
	if !ok {
		app.notFoundResponse(w, r, catalog.ErrVideoNotFound)
		return
	}
	app.jsonResponse(w, http.StatusOK, newVideoResponse(v))
}

// ListFeatured godoc
//
//	@Summary		Homepage sections
//	@Description	Every category with its featured videos in display order. Categories with nothing featured come back as empty lists.
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	map[string][]videoResponse
//	@Router			/catalog/featured [get]
func (app *application) listFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	all := app.catalog.FeaturedAll()
	out := make(map[videos.Category][]videoResponse, len(all))
	for _, c := range videos.Categories() {
		out[c] = newVideoResponses(all[c])
	}
	app.jsonResponse(w, http.StatusOK, out)
}

// ListFeaturedByCategory godoc
//
//	@Summary		One homepage section
//	@Tags			Catalog
//	@Produce		json
//	@Param			category	path		string	true	"trending, new, action, comedy, documentary, music or original"
//	@Success		200			{array}		videoResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Router			/catalog/featured/{category} [get]
func (app *application) listFeaturedByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	c, err := videos.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, newVideoResponses(app.catalog.Featured(c)))
}

type resolveResponse struct {
	Platform   platform.Platform `json:"platform"`
	ExternalID string            `json:"externalId"`
	Thumbnail  string            `json:"thumbnail"`
	EmbedURL   string            `json:"embedUrl"`
}

// ResolveVideoURL godoc
//
//	@Summary		Detect a video link's platform
//	@Description	Classifies a URL the way the catalog will store it. Unknown links resolve to "other"; this never fails for a non-empty url.
//	@Tags			Catalog
//	@Produce		json
//	@Param			url	query		string	true	"Video URL"
//	@Success		200	{object}	resolveResponse
//	@Failure		400	{object}	error	"Bad Request"
//	@Router			/catalog/resolve [get]
func (app *application) resolveVideoURLHandler(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		app.badRequestResponse(w, r, errors.New("url is required"))
		return
	}

	src := platform.Resolve(raw)
	app.jsonResponse(w, http.StatusOK, resolveResponse{
		Platform:   src.Platform,
		ExternalID: src.ExternalID,
		Thumbnail:  platform.Thumbnail(src.Platform, src.ExternalID, ""),
		EmbedURL:   platform.EmbedURL(src, raw),
	})
}
