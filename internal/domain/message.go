package domain

import (
	"fmt"
	"strings"
)

type Channel string

const (
	ChannelSMS       Channel = "sms"
	ChannelMMS       Channel = "mms"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelViber     Channel = "viber_service"
	ChannelMessenger Channel = "messenger"
)

func ParseChannel(raw string) (Channel, error) {
	switch channel := Channel(strings.ToLower(strings.TrimSpace(raw))); channel {
	case ChannelSMS, ChannelMMS, ChannelWhatsApp, ChannelViber, ChannelMessenger:
		return channel, nil
	case "viber":
		return ChannelViber, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChannel, raw)
	}
}

// IsChat reports whether the channel is a chat app rather than carrier messaging.
func (c Channel) IsChat() bool {
	switch c {
	case ChannelWhatsApp, ChannelViber, ChannelMessenger:
		return true
	default:
		return false
	}
}

// InboundEvent is a message received from the communications platform.
type InboundEvent struct {
	Channel     Channel
	MessageUUID string
	From        string
	To          string
	Text        string
}

func (e InboundEvent) Sender() Sender {
	return CanonicalSender(e.From)
}

// MessageRequest is an outbound text message. The concrete type selects the
// wire shape used by the messaging provider.
type MessageRequest interface {
	Channel() Channel
	Sender() string
	Recipient() string
	Body() string
	isMessageRequest()
}

// SMSText is used for SMS and MMS replies; MMS text replies travel as SMS.
type SMSText struct {
	From string
	To   string
	Text string
}

type WhatsAppText struct {
	From string
	To   string
	Text string
}

type ViberText struct {
	From string
	To   string
	Text string
}

type MessengerText struct {
	From string
	To   string
	Text string
}

func (m SMSText) Channel() Channel        { return ChannelSMS }
func (m SMSText) Sender() string          { return m.From }
func (m SMSText) Recipient() string       { return m.To }
func (m SMSText) Body() string            { return m.Text }
func (SMSText) isMessageRequest()         {}
func (m WhatsAppText) Channel() Channel   { return ChannelWhatsApp }
func (m WhatsAppText) Sender() string     { return m.From }
func (m WhatsAppText) Recipient() string  { return m.To }
func (m WhatsAppText) Body() string       { return m.Text }
func (WhatsAppText) isMessageRequest()    {}
func (m ViberText) Channel() Channel      { return ChannelViber }
func (m ViberText) Sender() string        { return m.From }
func (m ViberText) Recipient() string     { return m.To }
func (m ViberText) Body() string          { return m.Text }
func (ViberText) isMessageRequest()       {}
func (m MessengerText) Channel() Channel  { return ChannelMessenger }
func (m MessengerText) Sender() string    { return m.From }
func (m MessengerText) Recipient() string { return m.To }
func (m MessengerText) Body() string      { return m.Text }
func (MessengerText) isMessageRequest()   {}

func NewTextRequest(channel Channel, from, to, text string) (MessageRequest, error) {
	switch channel {
	case ChannelSMS, ChannelMMS:
		return SMSText{From: from, To: to, Text: text}, nil
	case ChannelWhatsApp:
		return WhatsAppText{From: from, To: to, Text: text}, nil
	case ChannelViber:
		return ViberText{From: from, To: to, Text: text}, nil
	case ChannelMessenger:
		return MessengerText{From: from, To: to, Text: text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChannel, channel)
	}
}
