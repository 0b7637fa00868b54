package sms

import (
	"context"
	"fmt"

	"pickupstand/internal/ports"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioClient adapts twilio-go to the SmsClient port.
type TwilioClient struct {
	api               *twilio.RestClient
	validator         twilioclient.RequestValidator
	from              string
	statusCallbackURL string
	validateWebhooks  bool
	logger            zerolog.Logger
}

// NewTwilioClient creates an SMS adapter. statusCallbackURL is where
// Twilio posts delivery updates; validateWebhooks toggles inbound
// signature checks (off in local dev behind tunnels).
func NewTwilioClient(accountSID, authToken, from, statusCallbackURL string, validateWebhooks bool, logger zerolog.Logger) ports.SmsClient {
	return &TwilioClient{
		api: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		validator:         twilioclient.NewRequestValidator(authToken),
		from:              from,
		statusCallbackURL: statusCallbackURL,
		validateWebhooks:  validateWebhooks,
		logger:            logger,
	}
}

// Send queues an outbound SMS and returns the message SID and initial
// status.
func (c *TwilioClient) Send(ctx context.Context, to, body string) (string, string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)
	if c.statusCallbackURL != "" {
		params.SetStatusCallback(c.statusCallbackURL)
	}

	msg, err := c.api.Api.CreateMessage(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to send sms: %w", err)
	}

	sid, status := "", ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	if msg.Status != nil {
		status = *msg.Status
	}

	c.logger.Info().
		Str("to", to).
		Str("sid", sid).
		Str("status", status).
		Msg("Sent SMS")
	return sid, status, nil
}

// ValidateSignature checks the X-Twilio-Signature of an inbound
// webhook. Returns true when validation is disabled by config.
func (c *TwilioClient) ValidateSignature(url string, params map[string]string, signature string) bool {
	if !c.validateWebhooks {
		return true
	}
	return c.validator.Validate(url, params, signature)
}
