package mq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	exchange  string
	key       string
	body      []byte
	messageID string
	withID    bool
}

func (r *recordingPublisher) PublishAsync(exchange, key string, body []byte) error {
	r.exchange, r.key, r.body = exchange, key, body
	r.withID = false
	return nil
}

func (r *recordingPublisher) PublishAsyncWithID(exchange, key string, body []byte, messageID string) error {
	r.exchange, r.key, r.body, r.messageID = exchange, key, body, messageID
	r.withID = true
	return nil
}

func TestPublishOrderStatusChangedCarriesMessageID(t *testing.T) {
	pub := &recordingPublisher{}
	ev := &OrderStatusChangedEvent{
		OrderID:     7,
		OrderNumber: "ORD202401150007",
		UserID:      3,
		FromStatus:  "pending",
		ToStatus:    "confirmed",
		ChangedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, PublishOrderStatusChanged(pub, ev))

	// 订单事件必须带 MessageId，消费端靠它去重
	assert.True(t, pub.withID)
	assert.Equal(t, Exchange, pub.exchange)
	assert.Equal(t, KeyOrderStatusChanged, pub.key)
	assert.Equal(t, ev.EventID(), pub.messageID)
	assert.NotEmpty(t, pub.messageID)

	var decoded OrderStatusChangedEvent
	require.NoError(t, json.Unmarshal(pub.body, &decoded))
	assert.Equal(t, *ev, decoded)
}

func TestEventIDStablePerTransition(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	ev := &OrderStatusChangedEvent{OrderID: 7, ToStatus: "confirmed", ChangedAt: at}

	// 同一次流转重发ID不变，不同流转ID不同
	assert.Equal(t, ev.EventID(), ev.EventID())
	other := &OrderStatusChangedEvent{OrderID: 7, ToStatus: "preparing", ChangedAt: at}
	assert.NotEqual(t, ev.EventID(), other.EventID())
}

func TestPublishOTPEmail(t *testing.T) {
	pub := &recordingPublisher{}
	require.NoError(t, PublishOTPEmail(pub, &OTPEmailJob{Email: "a@example.com", Code: "123456", Purpose: "register"}))

	assert.False(t, pub.withID)
	assert.Equal(t, KeyEmailOTP, pub.key)
	assert.Contains(t, string(pub.body), `"purpose":"register"`)
}

func TestPublishOrderStatusEmail(t *testing.T) {
	pub := &recordingPublisher{}
	job := &OrderStatusEmailJob{Email: "a@example.com", OrderNumber: "ORD202401150007", ToStatus: "delivered"}
	require.NoError(t, PublishOrderStatusEmail(pub, job))

	assert.True(t, pub.withID)
	assert.Equal(t, KeyEmailOrderStatus, pub.key)
	assert.Equal(t, "email:order:ORD202401150007:delivered", pub.messageID)
}
