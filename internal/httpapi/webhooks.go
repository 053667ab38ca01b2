package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rc-analytics/internal/apperr"
	"rc-analytics/internal/metrics"
	"rc-analytics/internal/webhooks"
	"rc-analytics/pkg/logger"
)

const (
	msgReceivedPOST = "Data received successfully via POST"
	msgReceivedGET  = "Data received successfully via GET"
	msgReceived     = "Data received successfully"

	maxWebhookBody = 1 << 20
)

// RingCentral subscription headers.
const (
	headerValidationToken   = "Validation-Token"
	headerVerificationToken = "Verification-Token"
)

var errBadVerificationToken = errors.New("invalid verification token")

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		return nil, apperr.Validation("httpapi.readBody", "request body too large or unreadable")
	}
	return body, nil
}

func (h Handlers) webhooksReady(c *gin.Context) bool {
	if h.Webhooks == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "webhook store not configured"})
		return false
	}
	return true
}

// MissedCallPOST serves POST /api/webhook/missed_call.
func (h Handlers) MissedCallPOST(c *gin.Context) {
	if !h.webhooksReady(c) {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	m, err := h.Webhooks.RecordMissedCall(c.Request.Context(), body)
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	logger.FromGin(c).Info("missed call received", "id", m.ID, "callid", m.CallID, "extension", m.ExtensionNumber)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgReceivedPOST, "data": m})
}

// MissedCallGET serves GET /api/webhook/missed_call.
func (h Handlers) MissedCallGET(c *gin.Context) {
	if !h.webhooksReady(c) {
		return
	}
	out, err := h.Webhooks.MissedCalls(c.Request.Context())
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgReceivedGET, "data": out})
}

// WebhookOPTIONS answers a bare OPTIONS request.
func WebhookOPTIONS(c *gin.Context) {
	c.Status(http.StatusOK)
}

// SMSPOST serves POST /api/webhook/msg_receive.
func (h Handlers) SMSPOST(c *gin.Context) {
	if !h.webhooksReady(c) {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	m, err := h.Webhooks.RecordSMS(c.Request.Context(), body)
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	logger.FromGin(c).Info("sms received", "id", m.ID, "extension", m.ExtensionNumber)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgReceivedPOST, "data": m})
}

// SMSGET serves GET /api/webhook/msg_receive.
func (h Handlers) SMSGET(c *gin.Context) {
	if !h.webhooksReady(c) {
		return
	}
	out, err := h.Webhooks.SMSMessages(c.Request.Context())
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgReceivedGET, "data": out})
}

// RingCentralEvent serves POST /api/webhook/ringcentral.
//
// A subscription handshake carries Validation-Token, which must be echoed back.
// Notifications are logged and echoed, not stored.
func (h Handlers) RingCentralEvent(c *gin.Context) {
	log := logger.FromGin(c)
	kind := string(webhooks.KindVendor)

	if h.VerificationToken != "" && c.GetHeader(headerVerificationToken) != h.VerificationToken {
		metrics.WebhookIngested(kind, "rejected")
		log.Warn("ringcentral webhook rejected", "err", errBadVerificationToken)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": MsgWebhookFailed,
			"error":   errBadVerificationToken.Error(),
		})
		return
	}
	if tok := c.GetHeader(headerValidationToken); tok != "" {
		c.Header(headerValidationToken, tok)
	}

	body, err := readBody(c)
	if err != nil {
		fail(c, MsgWebhookFailed, err)
		return
	}
	var data any
	if len(body) > 0 {
		data, err = webhooks.DecodeAny(body)
		if err != nil {
			metrics.WebhookIngested(kind, "rejected")
			fail(c, MsgWebhookFailed, &apperr.Error{Kind: apperr.KindValidation, Op: "httpapi.RingCentralEvent", Message: webhooks.MsgInvalidBody, Err: err})
			return
		}
	}

	metrics.WebhookIngested(kind, "received")
	log.Info("ringcentral webhook received", "handshake", c.GetHeader(headerValidationToken) != "", "data", data)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgReceived, "data": data})
}
