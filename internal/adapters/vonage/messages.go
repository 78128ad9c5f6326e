package vonage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/sms-rce/internal/domain"
)

type textMessage struct {
	MessageType string `json:"message_type"`
	Channel     string `json:"channel"`
	From        string `json:"from"`
	To          string `json:"to"`
	Text        string `json:"text"`
}

type messageResponse struct {
	MessageUUID string `json:"message_uuid"`
}

func (c *Client) SendMessage(ctx context.Context, req domain.MessageRequest) (string, error) {
	payload, err := encodeMessage(req)
	if err != nil {
		return "", err
	}

	endpoint := c.opts.MessagesURL
	if c.sandbox[req.Channel()] {
		endpoint = c.opts.MessagesSandboxURL
	}

	var resp messageResponse
	if err := c.postJSON(ctx, "send message", endpoint, authAny, payload, &resp); err != nil {
		return "", err
	}
	if resp.MessageUUID == "" {
		return "", errors.New("send message: response missing message_uuid")
	}
	return resp.MessageUUID, nil
}

func encodeMessage(req domain.MessageRequest) (textMessage, error) {
	var channel domain.Channel
	switch req.(type) {
	case domain.SMSText:
		channel = domain.ChannelSMS
	case domain.WhatsAppText:
		channel = domain.ChannelWhatsApp
	case domain.ViberText:
		channel = domain.ChannelViber
	case domain.MessengerText:
		channel = domain.ChannelMessenger
	default:
		return textMessage{}, fmt.Errorf("%w: %T", domain.ErrUnsupportedChannel, req)
	}

	return textMessage{
		MessageType: "text",
		Channel:     string(channel),
		From:        req.Sender(),
		To:          req.Recipient(),
		Text:        req.Body(),
	}, nil
}
