package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docauth/internal/docauth/models"
	"docauth/internal/platform/kafka/producer"
)

type stubProducer struct {
	messages []*producer.Message
	err      error
}

func (p *stubProducer) Produce(_ context.Context, msg *producer.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestPublishResult(t *testing.T) {
	prod := &stubProducer{}
	publisher := NewKafkaPublisher(prod)

	event := models.ResultEvent{
		MessageID:       "msg-1",
		DocumentID:      "doc-1",
		IDCitizen:       1234567890,
		Authenticated:   true,
		Message:         models.EventMessageAuthenticated,
		AuthenticatedAt: "2025-01-30T10:00:00Z",
	}
	require.NoError(t, publisher.PublishResult(context.Background(), event))

	require.Len(t, prod.messages, 1)
	msg := prod.messages[0]
	assert.Equal(t, RoutingKey, msg.Topic)
	assert.Equal(t, "1234567890", string(msg.Key))
	assert.Equal(t, map[string]string{"x-message-id": "msg-1"}, msg.Headers)

	var decoded models.ResultEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublishResultWithoutMessageID(t *testing.T) {
	prod := &stubProducer{}
	publisher := NewKafkaPublisher(prod)

	err := publisher.PublishResult(context.Background(), models.ResultEvent{IDCitizen: 42})
	require.NoError(t, err)
	require.Len(t, prod.messages, 1)
	assert.Nil(t, prod.messages[0].Headers)
}

func TestPublishResultTopicOverride(t *testing.T) {
	prod := &stubProducer{}
	publisher := NewKafkaPublisher(prod, WithTopic("documents.results.v2"))

	require.NoError(t, publisher.PublishResult(context.Background(), models.ResultEvent{IDCitizen: 42}))
	require.Len(t, prod.messages, 1)
	assert.Equal(t, "documents.results.v2", prod.messages[0].Topic)
}

func TestPublishResultProducerFailure(t *testing.T) {
	produceErr := errors.New("broker unreachable")
	publisher := NewKafkaPublisher(&stubProducer{err: produceErr})

	err := publisher.PublishResult(context.Background(), models.ResultEvent{IDCitizen: 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, produceErr)
	assert.Contains(t, err.Error(), "publish result event")
}
