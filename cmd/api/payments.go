package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"celflicks/internal/checkout"
	"celflicks/internal/payments"
	"celflicks/internal/purchases"
)

// ListPackages godoc
//
//	@Summary		XCE credit packages
//	@Tags			Payments
//	@Produce		json
//	@Success		200	{array}		ledger.Package
//	@Failure		500	{object}	error	"Internal Server Error"
//	@Router			/payments/packages [get]
func (app *application) listPackagesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pkgs, err := app.purchases.Packages(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, pkgs)
}

type stripeIntentPayload struct {
	PackageID string `json:"package_id" validate:"required,max=64"`
	Amount    int64  `json:"amount" validate:"omitempty,gt=0"` // cents; defaults to the package price
	Currency  string `json:"currency" validate:"omitempty,len=3"`
}

// CreateStripeIntent godoc
//
//	@Summary		Create a card payment intent
//	@Description	Opens a Stripe PaymentIntent for a package. The amount, when sent, must equal the package price in cents.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		stripeIntentPayload	true	"Intent"
//	@Success		201		{object}	purchases.Intent
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Package not found"
//	@Failure		429		{object}	error	"Rate limited"
//	@Failure		502		{object}	error	"Provider error"
//	@Security		ApiKeyAuth
//	@Router			/payments/stripe/intent [post]
func (app *application) createStripeIntentHandler(w http.ResponseWriter, r *http.Request) {
	var payload stripeIntentPayload
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

	amount := payload.Amount
	if amount == 0 {
		pkg, err := app.purchases.Package(ctx, payload.PackageID)
		if err != nil {
			app.purchaseErrorResponse(w, r, err)
			return
		}
		amount = purchases.MinorUnits(pkg.PriceUSD)
	}

	intent, err := app.purchases.CreateIntent(ctx, payments.MethodStripe, purchases.IntentRequest{
		PackageID:   payload.PackageID,
		AmountMinor: amount,
		Currency:    strings.ToLower(payload.Currency),
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusCreated, intent)
}

type stripeVerifyPayload struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,startswith=pi_"`
	PackageID       string `json:"package_id" validate:"required,max=64"`
}

// VerifyStripePayment godoc
//
//	@Summary		Verify a card payment and credit XCE
//	@Description	Checks the intent with Stripe and, if it succeeded, credits the package's XCE to the caller. A payment is credited once.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		stripeVerifyPayload	true	"Verification"
//	@Success		200		{object}	purchases.Receipt
//	@Failure		400		{object}	error	"Payment not completed"
//	@Failure		409		{object}	error	"Already credited"
//	@Failure		500		{object}	error	"Credit failed"
//	@Security		ApiKeyAuth
//	@Router			/payments/stripe/verify [post]
func (app *application) verifyStripePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload stripeVerifyPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.verifyPayment(w, r, payments.MethodStripe, payload.PaymentIntentID, payload.PackageID)
}

type paypalOrderPayload struct {
	PackageID string `json:"package_id" validate:"required,max=64"`
}

// CreatePayPalOrder godoc
//
//	@Summary		Create a PayPal order
//	@Description	Opens a CAPTURE order for the package price in USD and returns the buyer approval URL.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		paypalOrderPayload	true	"Order"
//	@Success		201		{object}	purchases.Intent
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Package not found"
//	@Failure		502		{object}	error	"Provider error"
//	@Security		ApiKeyAuth
//	@Router			/payments/paypal/order [post]
func (app *application) createPayPalOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload paypalOrderPayload
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

	pkg, err := app.purchases.Package(ctx, payload.PackageID)
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}

	intent, err := app.purchases.CreateIntent(ctx, payments.MethodPayPal, purchases.IntentRequest{
		PackageID:   pkg.ID,
		AmountMinor: purchases.MinorUnits(pkg.PriceUSD),
		Currency:    "USD",
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusCreated, intent)
}

type paypalVerifyPayload struct {
	OrderID   string `json:"order_id" validate:"required,max=64"`
	PackageID string `json:"package_id" validate:"required,max=64"`
	// Capture asks the server to capture an approved order before verifying,
	// for clients that do not capture in the browser.
	Capture bool `json:"capture"`
}

// VerifyPayPalPayment godoc
//
//	@Summary		Verify a PayPal order and credit XCE
//	@Description	Requires the order and its first capture to be COMPLETED.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		paypalVerifyPayload	true	"Verification"
//	@Success		200		{object}	purchases.Receipt
//	@Failure		400		{object}	error	"Payment not completed"
//	@Failure		409		{object}	error	"Already credited"
//	@Failure		500		{object}	error	"Credit failed"
//	@Security		ApiKeyAuth
//	@Router			/payments/paypal/verify [post]
func (app *application) verifyPayPalPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload paypalVerifyPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Capture {
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		_, err := app.purchases.Confirm(ctx, payments.MethodPayPal, payload.OrderID, "")
		cancel()
		if err != nil {
			app.purchaseErrorResponse(w, r, err)
			return
		}
	}

	app.verifyPayment(w, r, payments.MethodPayPal, payload.OrderID, payload.PackageID)
}

func (app *application) verifyPayment(w http.ResponseWriter, r *http.Request, method, paymentID, packageID string) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("missing user"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	receipt, err := app.purchases.Verify(ctx, method, purchases.VerifyRequest{
		PaymentID: paymentID,
		UserID:    user.UserID(),
		PackageID: packageID,
		Email:     user.Email,
		Username:  user.Email,
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, receipt)
}

type checkoutPayload struct {
	PackageID     string `json:"package_id" validate:"required,max=64"`
	Method        string `json:"method" validate:"required,oneof=stripe"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,max=255"`
}

// Checkout godoc
//
//	@Summary		Run a complete checkout
//	@Description	Creates a card intent, confirms it with the payment method and verifies it, in one request. The response carries the final attempt state; a failed attempt says which step failed. Only stripe is accepted: a PayPal order needs buyer approval between creation and capture, so wallet buyers use /payments/paypal/order and /payments/paypal/verify.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		checkoutPayload	true	"Checkout"
//	@Success		200		{object}	checkout.View
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Package not found"
//	@Failure		402		{object}	checkout.View	"Payment failed"
//	@Security		ApiKeyAuth
//	@Router			/payments/checkout [post]
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("missing user"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()

	pkg, err := app.purchases.Package(ctx, payload.PackageID)
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}

	attempt := checkout.NewAttempt(checkout.CardProvider(app.purchases), checkout.NewLedgerVerifier(app.purchases), app.logger)

	_, err = attempt.Begin(ctx, checkout.Package{
		ID:      pkg.ID,
		Name:    pkg.Name,
		Price:   pkg.PriceUSD,
		Credits: pkg.XCEAmount,
	}, user.UserID())
	if err == nil {
		err = attempt.Collect()
	}
	if err == nil {
		_, err = attempt.Submit(ctx, payload.PaymentMethod)
	}

	view := attempt.View()
	if err != nil {
		var perr *checkout.PaymentProviderError
		var verr *checkout.VerificationError
		switch {
		case errors.As(err, &perr):
			app.logger.Warnw("checkout payment failed", "user_id", user.UserID(), "stage", perr.Stage, "error", perr.Err)
			writeJSON(w, http.StatusPaymentRequired, view)
		case errors.As(err, &verr):
			// charged but not credited; support reconciles from the payment id
			writeJSON(w, http.StatusInternalServerError, view)
		default:
			app.badRequestResponse(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}

// GetWallet godoc
//
//	@Summary		Caller's XCE balance
//	@Tags			Payments
//	@Produce		json
//	@Success		200	{object}	ledger.Wallet
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/wallet [get]
func (app *application) getWalletHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("missing user"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	wallet, err := app.purchases.Wallet(ctx, user.UserID())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, wallet)
}
