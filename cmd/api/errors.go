package main

import (
	"errors"
	"net/http"

	"celflicks/internal/catalog"
	"celflicks/internal/domain/ledger"
	"celflicks/internal/domain/videos"
	"celflicks/internal/payments"
	"celflicks/internal/purchases"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusNotFound, err.Error())
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("conflict response", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path)
	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

func (app *application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("upstream error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSONError(w, http.StatusBadGateway, err.Error())
}

// catalogErrorResponse maps catalog store failures onto HTTP statuses. A
// WriteError or FetchError without a more specific cause means the data
// service refused or was unreachable.
func (app *application) catalogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var writeErr *catalog.WriteError
	var fetchErr *catalog.FetchError

	switch {
	case errors.Is(err, catalog.ErrVideoNotFound),
		errors.Is(err, catalog.ErrNotFeatured),
		errors.Is(err, videos.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, catalog.ErrInvalidVideo),
		errors.Is(err, catalog.ErrInvalidDirection),
		errors.Is(err, videos.ErrInvalidCategory):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, catalog.ErrAlreadyFeatured),
		errors.Is(err, videos.ErrDuplicateFeatured),
		errors.Is(err, catalog.ErrStaleFetch):
		app.conflictResponse(w, r, err)
	case errors.As(err, &writeErr), errors.As(err, &fetchErr):
		app.badGatewayResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

func (app *application) purchaseErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, purchases.ErrInvalidRequest),
		errors.Is(err, purchases.ErrAmountMismatch),
		errors.Is(err, purchases.ErrPackageMismatch),
		errors.Is(err, purchases.ErrPaymentNotCompleted),
		errors.Is(err, payments.ErrGatewayNotRegistered):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, purchases.ErrInvalidPackage),
		errors.Is(err, ledger.ErrPackageNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, purchases.ErrAlreadyCredited):
		app.conflictResponse(w, r, err)
	case errors.Is(err, purchases.ErrCreditFailed):
		app.internalServerError(w, r, err)
	default:
		app.badGatewayResponse(w, r, err)
	}
}
