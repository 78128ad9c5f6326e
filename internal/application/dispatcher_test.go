package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports/mocks"
)

func TestSplitTextRoundTrip(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 3, 7, 1000} {
		for length := 0; length <= 25; length++ {
			alphabet := []rune("ab€")
			runes := make([]rune, length)
			for i := range runes {
				runes[i] = alphabet[i%len(alphabet)]
			}
			text := string(runes)
			parts := splitText(text, size)

			want := (length + size - 1) / size
			require.Len(t, parts, want, "length=%d size=%d", length, size)
			assert.Equal(t, text, strings.Join(parts, ""))
			for _, part := range parts {
				assert.LessOrEqual(t, len([]rune(part)), size)
			}
		}
	}
}

func TestSplitTextCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	parts := splitText("héllo wörld", 5)
	assert.Equal(t, []string{"héllo", " wörl", "d"}, parts)
}

func TestSplitTextEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, splitText("", 10))
}

func TestDispatcherSendsSegmentsInOrder(t *testing.T) {
	t.Parallel()

	box := &outbox{}
	sender := mocks.NewMockMessageSender(t)
	sender.EXPECT().SendMessage(mock.Anything, mock.Anything).RunAndReturn(box.send).Times(3)

	d := NewDispatcher(sender, 4, nil)
	sent, err := d.Send(context.Background(), domain.ChannelWhatsApp, "14150000000", "15550001111", "abcdefghij")
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, box.texts())

	for _, req := range box.all() {
		assert.IsType(t, domain.WhatsAppText{}, req)
		assert.Equal(t, "14150000000", req.Sender())
		assert.Equal(t, "15550001111", req.Recipient())
	}
}

func TestDispatcherStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("rate limited")
	box := &outbox{failAt: 2, failErr: boom}
	sender := mocks.NewMockMessageSender(t)
	sender.EXPECT().SendMessage(mock.Anything, mock.Anything).RunAndReturn(box.send).Times(2)

	d := NewDispatcher(sender, 2, nil)
	sent, err := d.Send(context.Background(), domain.ChannelSMS, "a", "b", "123456")
	require.Error(t, err)
	assert.Equal(t, 1, sent)

	var dispatchErr *domain.DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, 1, dispatchErr.Sent)
	assert.Equal(t, 3, dispatchErr.Total)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"12"}, box.texts())
}

func TestDispatcherRejectsUnknownChannelBeforeSending(t *testing.T) {
	t.Parallel()

	sender := mocks.NewMockMessageSender(t)
	d := NewDispatcher(sender, 10, nil)

	sent, err := d.Send(context.Background(), domain.Channel("pager"), "a", "b", "hi")
	require.ErrorIs(t, err, domain.ErrUnsupportedChannel)
	assert.Zero(t, sent)
}

func TestDispatcherReplySwapsNumbers(t *testing.T) {
	t.Parallel()

	box := &outbox{}
	sender := mocks.NewMockMessageSender(t)
	sender.EXPECT().SendMessage(mock.Anything, mock.Anything).RunAndReturn(box.send).Once()

	d := NewDispatcher(sender, 0, nil)
	inbound := domain.InboundEvent{Channel: domain.ChannelMMS, From: "15550001111", To: "14150000000", Text: "ls"}
	_, err := d.Reply(context.Background(), inbound, "ok")
	require.NoError(t, err)

	reqs := box.all()
	require.Len(t, reqs, 1)
	assert.IsType(t, domain.SMSText{}, reqs[0])
	assert.Equal(t, "14150000000", reqs[0].Sender())
	assert.Equal(t, "15550001111", reqs[0].Recipient())
}
