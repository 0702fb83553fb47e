package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pixeldodo/pixeldodo/app/models"
	"github.com/pixeldodo/pixeldodo/app/repository"
	"github.com/pixeldodo/pixeldodo/internal/pkg/database"
	"github.com/pixeldodo/pixeldodo/internal/pkg/env"
	"github.com/pixeldodo/pixeldodo/internal/pkg/payments"
)

// HandlePaymentWebhook receives payment notifications from Dodo. Every
// delivery is persisted before processing; replays of a payment that
// already completed are acknowledged without touching any balance, while
// retries of deliveries that previously failed run again.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("dodo-signature"))
	secret := env.GetEnv("WEBHOOK_SECRET", "")

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signatureValid := payments.AcceptDelivery(rawBody, signature, secret)

	// Parse early so the stored event row carries the payment id, but the
	// malformed-payload response is only sent after the row exists.
	event, parseErr := payments.ParseDodoWebhookEvent(rawBody)

	input := payments.WebhookEventInput{
		Provider:       models.PaymentProviderDodo,
		PayloadJSON:    string(rawBody),
		SignatureValid: signatureValid,
	}
	if event != nil {
		input.PaymentID = event.PaymentID
		input.EventType = event.Type
	}

	process, stored, err := svc.RecordWebhookEvent(ctx, input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !process {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, 0, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if parseErr != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, 0, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	outcome, err := svc.ProcessEvent(ctx, event)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, 0, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	switch outcome.Status {
	case payments.StatusCredited:
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, outcome.CreditedAmount, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "credited": outcome.CreditedAmount})
	case payments.StatusIgnored:
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, 0, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	case payments.StatusRejected:
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, 0, fmt.Errorf("rejected: %s", outcome.Reason))
		switch outcome.Reason {
		case payments.ReasonUnknownCustomer:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_customer"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": outcome.Reason})
		}
	default:
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, 0, fmt.Errorf("unhandled outcome %q", outcome.Status))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}
}

// HandlePaymentRedirect relays the checkout result back to the front end,
// forwarding the payment id with a normalized status. Credits are granted
// by the webhook alone.
func HandlePaymentRedirect(c *fiber.Ctx) error {
	paymentID := strings.TrimSpace(c.Query("payment_id"))
	status := payments.NormalizeRedirectStatus(c.Query("status"))

	base := strings.TrimRight(env.GetEnv("MAINAPP_URL", ""), "/")
	if base == "" {
		base = strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	}
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	target := fmt.Sprintf("%s/?payment_id=%s&status=%s", base, url.QueryEscape(paymentID), status)
	return c.Redirect(target, fiber.StatusSeeOther)
}

// HandlePaymentPackages lists the purchasable credit packages.
func HandlePaymentPackages(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetCreditPackageRepository()
	pkgs, err := repo.ListActive(models.PaymentProviderDodo)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load packages"})
	}

	items := make([]fiber.Map, 0, len(pkgs))
	for _, pkg := range pkgs {
		items = append(items, fiber.Map{
			"product_id":  pkg.ProductID,
			"name":        pkg.Name,
			"credits":     pkg.Credits,
			"price_cents": pkg.PriceCents,
		})
	}

	return c.JSON(fiber.Map{"packages": items})
}
