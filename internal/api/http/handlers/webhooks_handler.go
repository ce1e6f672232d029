package handlers

import (
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-relay/internal/service"
	"github.com/spec-kit/rental-relay/internal/telephony"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// WebhooksHandler serves the telephony provider's inbound webhooks:
// host confirmation replies and anonymous-number SMS/voice exchange.
type WebhooksHandler struct {
	reservations    *service.ReservationService
	relay           *service.RelayService
	announcementURL string
	logger          *zap.Logger
}

// NewWebhooksHandler constructs handler.
func NewWebhooksHandler(reservationService *service.ReservationService, relayService *service.RelayService, announcementURL string, logger *zap.Logger) *WebhooksHandler {
	return &WebhooksHandler{
		reservations:    reservationService,
		relay:           relayService,
		announcementURL: announcementURL,
		logger:          logger,
	}
}

// ConfirmReservation POST /webhooks/reservations/confirm. Form fields:
// From (host real number), Body. Always answers with TwiML; internal
// failures degrade to the fallback reply rather than raw errors.
func (h *WebhooksHandler) ConfirmReservation(c *fiber.Ctx) error {
	from := c.FormValue("From")
	body := c.FormValue("Body")

	reply, err := h.reservations.HandleConfirmationReply(c.Context(), from, body)
	if err != nil {
		h.logger.Error("confirmation reply handling failed",
			zap.String("from", from),
			zap.Error(err))
		reply = service.FallbackReply
	}

	return h.renderTwiML(c, telephony.NewMessagingResponse().Message(reply))
}

// ExchangeSMS POST /webhooks/exchange/sms. Relays the body to the
// resolved counterpart. An unknown anonymous number is an error the
// caller sees, never silently dropped.
func (h *WebhooksHandler) ExchangeSMS(c *fiber.Ctx) error {
	from := c.FormValue("From")
	to := c.FormValue("To")
	body := c.FormValue("Body")

	counterpart, err := h.relay.ResolveCounterpart(c.Context(), from, to)
	if err != nil {
		return err
	}

	return h.renderTwiML(c, telephony.NewMessagingResponse().MessageTo(counterpart, body))
}

// ExchangeVoice POST /webhooks/exchange/voice. Plays the announcement
// then bridges the call to the resolved counterpart.
func (h *WebhooksHandler) ExchangeVoice(c *fiber.Ctx) error {
	from := c.FormValue("From")
	to := c.FormValue("To")

	counterpart, err := h.relay.ResolveCounterpart(c.Context(), from, to)
	if err != nil {
		return err
	}

	return h.renderTwiML(c, telephony.NewVoiceResponse().Play(h.announcementURL).Dial(counterpart))
}

type twimlRenderer interface {
	Render() (string, error)
}

func (h *WebhooksHandler) renderTwiML(c *fiber.Ctx, response twimlRenderer) error {
	markup, err := response.Render()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, telephony.TwiMLContentType)
	return c.SendString(markup)
}
