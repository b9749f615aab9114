package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishek622/moviestream/pkg/model"
)

func TestObserverStartsSignedOut(t *testing.T) {
	o := NewObserver(nil)
	s, ok := o.CurrentSession()
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestPublishUpdatesCurrentAndNotifies(t *testing.T) {
	o := NewObserver(nil)
	var got []model.AuthEventType
	cancel := o.Subscribe(func(e model.AuthEvent) { got = append(got, e.Type) })
	defer cancel()

	s := &model.Session{UserID: "u1", Email: "ada@example.com"}
	o.Publish(model.AuthEvent{Type: model.AuthEventSignedIn, Session: s})
	cur, ok := o.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, s, cur)

	o.Publish(model.AuthEvent{Type: model.AuthEventSignedOut, Session: s})
	_, ok = o.CurrentSession()
	assert.False(t, ok)

	assert.Equal(t, []model.AuthEventType{model.AuthEventSignedIn, model.AuthEventSignedOut}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	o := NewObserver(nil)
	calls := 0
	cancel := o.Subscribe(func(model.AuthEvent) { calls++ })
	assert.Equal(t, 1, o.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, o.Subscribers())

	o.Publish(model.AuthEvent{Type: model.AuthEventSignedIn, Session: &model.Session{UserID: "u"}})
	assert.Zero(t, calls)
}

func TestRepeatedMountsDoNotLeak(t *testing.T) {
	o := NewObserver(nil)
	for i := 0; i < 10; i++ {
		cancel := o.Subscribe(func(model.AuthEvent) {})
		cancel()
	}
	assert.Equal(t, 0, o.Subscribers())
}

func TestSubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	o := NewObserver(nil)
	var cancel func()
	cancel = o.Subscribe(func(model.AuthEvent) { cancel() })
	o.Publish(model.AuthEvent{Type: model.AuthEventSignedOut})
	assert.Equal(t, 0, o.Subscribers())
}

func TestFixed(t *testing.T) {
	_, ok := NewFixed(nil).CurrentSession()
	assert.False(t, ok)

	s, ok := NewFixed(&model.Session{UserID: "u"}).CurrentSession()
	require.True(t, ok)
	assert.Equal(t, model.UserID("u"), s.UserID)
}
