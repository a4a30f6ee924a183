package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RejectsUnregisteredTypes(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Serialize(newTestEvent("Nope"))
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = s.Deserialize("Nope", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestEventSerializer_DecodesIntoRegisteredType(t *testing.T) {
	s := NewEventSerializer()
	s.Register("TestEvent", &testEvent{})

	event := newTestEvent("TestEvent")
	event.Data = "payload"
	data, err := s.Serialize(event)
	require.NoError(t, err)

	decoded, err := s.Deserialize("TestEvent", data)
	require.NoError(t, err)

	got, ok := decoded.(*testEvent)
	require.True(t, ok)
	assert.Equal(t, event.EventID(), got.EventID())
	assert.Equal(t, event.AggregateID(), got.AggregateID())
	assert.Equal(t, "payload", got.Data)
}

func TestEventSerializer_InvalidJSON(t *testing.T) {
	s := NewEventSerializer()
	s.Register("TestEvent", &testEvent{})

	_, err := s.Deserialize("TestEvent", []byte(`{not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEventType)
}

func TestNewDomainEventSerializer_RegistersDomainEvents(t *testing.T) {
	s := NewDomainEventSerializer()

	for _, eventType := range []string{
		ordering.EventTypeOrderPlaced,
		ordering.EventTypeOrderCompleted,
		ordering.EventTypeDriverAssigned,
		loyalty.EventTypePointsEarned,
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
	types := s.RegisteredTypes()
	assert.IsNonDecreasing(t, types)
}

func TestDomainEventSerializer_KeepsOrderParties(t *testing.T) {
	s := NewDomainEventSerializer()
	driverID := uuid.New()
	event := &ordering.DriverAssignedEvent{
		OrderParties: ordering.OrderParties{
			OrderID:     uuid.New(),
			OrderNumber: "ORD-20260101-00001",
			ClientID:    uuid.New(),
			CookID:      uuid.New(),
			DriverID:    &driverID,
		},
	}
	event.BaseDomainEvent.ID = uuid.New()
	event.BaseDomainEvent.Type = ordering.EventTypeDriverAssigned
	event.BaseDomainEvent.Timestamp = time.Now()

	data, err := s.Serialize(event)
	require.NoError(t, err)
	decoded, err := s.Deserialize(ordering.EventTypeDriverAssigned, data)
	require.NoError(t, err)

	got, ok := decoded.(*ordering.DriverAssignedEvent)
	require.True(t, ok)
	assert.Equal(t, event.OrderParties, got.OrderParties)
}
