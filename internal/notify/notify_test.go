package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleBooked() Booked {
	return Booked{
		SessionID:        42,
		StudentAccountID: 1,
		TeacherAccountID: 2,
		SessionDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		StartTime:        model.TimeOfDay(9 * 60),
		EndTime:          model.TimeOfDay(10 * 60),
		DurationMinutes:  60,
	}
}

type fakeMessageStore struct {
	msgs []*model.Message
	err  error
}

func (f *fakeMessageStore) Create(_ context.Context, msg *model.Message) error {
	if f.err != nil {
		return f.err
	}
	msg.ID = int64(len(f.msgs) + 1)
	f.msgs = append(f.msgs, msg)
	return nil
}

func TestBooked_Text(t *testing.T) {
	require.Equal(t,
		"New session booking request for 2024-01-01 09:00-10:00. Please accept to confirm.",
		sampleBooked().Text())
}

func TestMessageNotifier(t *testing.T) {
	store := &fakeMessageStore{}
	n := NewMessageNotifier(store)

	require.NoError(t, n.SessionBooked(context.Background(), sampleBooked()))
	require.Len(t, store.msgs, 1)

	msg := store.msgs[0]
	require.Equal(t, int64(1), msg.SenderID)
	require.Equal(t, int64(2), msg.ReceiverID)
	require.NotNil(t, msg.SessionID)
	require.Equal(t, int64(42), *msg.SessionID)
	require.Equal(t, model.MessageTypeText, msg.Type)
}

func TestMessageNotifier_StoreError(t *testing.T) {
	n := NewMessageNotifier(&fakeMessageStore{err: errors.New("db down")})
	require.Error(t, n.SessionBooked(context.Background(), sampleBooked()))
}

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

type fakeChats map[int64]int64

func (f fakeChats) GetTelegramChatID(_ context.Context, accountID int64) (*int64, error) {
	id, ok := f[accountID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, fakeChats{2: 777}, zap.NewNop())

	require.NoError(t, n.SessionBooked(context.Background(), sampleBooked()))
	require.Len(t, sender.sent, 1)
	require.Equal(t, int64(777), sender.sent[0].ChatID)
	require.Contains(t, sender.sent[0].Text, "2024-01-01 09:00-10:00")
}

func TestTelegramNotifier_NoChatSkips(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, fakeChats{}, zap.NewNop())

	require.NoError(t, n.SessionBooked(context.Background(), sampleBooked()))
	require.Empty(t, sender.sent)
}

type fakePublisher struct {
	subject string
	data    []byte
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	f.subject = subj
	f.data = data
	return nil
}

func TestEventNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewEventNotifier(pub)

	require.NoError(t, n.SessionBooked(context.Background(), sampleBooked()))
	require.Equal(t, SubjectSessionBooked, pub.subject)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	require.Equal(t, "session.booked", decoded["event_type"])
	require.Equal(t, "2024-01-01", decoded["session_date"])
	require.Equal(t, "09:00", decoded["start_time"])
	require.EqualValues(t, 42, decoded["session_id"])
}

type failingNotifier struct{}

func (failingNotifier) SessionBooked(context.Context, Booked) error {
	return errors.New("boom")
}

func TestMulti_ContinuesAfterFailure(t *testing.T) {
	store := &fakeMessageStore{}
	m := NewMulti(zap.NewNop(), failingNotifier{})
	m.Add(NewMessageNotifier(store))

	err := m.SessionBooked(context.Background(), sampleBooked())
	require.Error(t, err)
	require.Len(t, store.msgs, 1)
}
