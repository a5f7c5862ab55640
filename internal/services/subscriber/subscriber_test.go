package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/flood-alert/internal/config"
	"github.com/magabrotheeeer/flood-alert/internal/lib/unsubtoken"
	"github.com/magabrotheeeer/flood-alert/internal/models"
	sendersvc "github.com/magabrotheeeer/flood-alert/internal/services/sender"
	"github.com/magabrotheeeer/flood-alert/internal/storage/repository"
)

// MockRepo реализует интерфейс SubscriberRepository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) UpsertPendingSignup(ctx context.Context, sub models.Subscriber) (*models.Subscriber, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func (m *MockRepo) VerifyByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func (m *MockRepo) Unsubscribe(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) ListActiveRecipients(ctx context.Context) ([]*models.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscriber), args.Error(1)
}

// MockSender реализует интерфейс EmailSender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(msg sendersvc.EmailMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func newService(repo *MockRepo, sender *MockSender) *SubscriberService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := config.Alerts{
		PublicBaseURL:     "https://floods.example.com",
		UnsubscribeSecret: "test-secret",
	}
	return NewSubscriberService(repo, sender, cfg, logger)
}

func TestSignup_SendsVerificationLink(t *testing.T) {
	repo := new(MockRepo)
	sender := new(MockSender)

	stored := &models.Subscriber{
		ID:                "0192e4a0-1111-7000-8000-0123456789ab",
		Email:             "a@example.com",
		VerificationToken: "tok-123",
	}
	repo.On("UpsertPendingSignup", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.Email == "a@example.com" && !sub.IsVerified && !sub.IsSubscribed
	})).Return(stored, nil)
	sender.On("Send", mock.MatchedBy(func(msg sendersvc.EmailMessage) bool {
		link := "https://floods.example.com/verify?token=tok-123"
		return msg.To == "a@example.com" &&
			strings.Contains(msg.TextBody, link) &&
			strings.Contains(msg.HTMLBody, link)
	})).Return(nil)

	err := newService(repo, sender).Signup(context.Background(), "a@example.com")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestSignup_ConflictPassesThrough(t *testing.T) {
	repo := new(MockRepo)
	sender := new(MockSender)

	repo.On("UpsertPendingSignup", mock.Anything, mock.Anything).
		Return(nil, repository.ErrEmailAlreadySubscribed)

	err := newService(repo, sender).Signup(context.Background(), "a@example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrEmailAlreadySubscribed)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestSignup_TransportFailure(t *testing.T) {
	repo := new(MockRepo)
	sender := new(MockSender)

	stored := &models.Subscriber{ID: "id", Email: "a@example.com", VerificationToken: "tok"}
	repo.On("UpsertPendingSignup", mock.Anything, mock.Anything).Return(stored, nil)
	sender.On("Send", mock.Anything).Return(errors.New("smtp down"))

	err := newService(repo, sender).Signup(context.Background(), "a@example.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrEmailAlreadySubscribed)
}

func TestVerify(t *testing.T) {
	repo := new(MockRepo)
	sub := &models.Subscriber{ID: "id", Email: "a@example.com", IsVerified: true, IsSubscribed: true}
	repo.On("VerifyByToken", mock.Anything, "tok").Return(sub, nil)
	repo.On("VerifyByToken", mock.Anything, "used").Return(nil, repository.ErrVerificationTokenNotFound)

	svc := newService(repo, new(MockSender))

	got, err := svc.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = svc.Verify(context.Background(), "used")
	assert.ErrorIs(t, err, repository.ErrVerificationTokenNotFound)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Unsubscribe", mock.Anything, "id-1").Return(true, nil).Once()
	repo.On("Unsubscribe", mock.Anything, "id-1").Return(false, nil).Once()

	svc := newService(repo, new(MockSender))

	changed, err := svc.Unsubscribe(context.Background(), "id-1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Unsubscribe(context.Background(), "id-1")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCheckUnsubscribeToken(t *testing.T) {
	svc := newService(new(MockRepo), new(MockSender))

	valid := unsubtoken.Issue("id-1", "test-secret")

	assert.True(t, svc.CheckUnsubscribeToken("id-1", valid))
	assert.False(t, svc.CheckUnsubscribeToken("id-2", valid))
	assert.False(t, svc.CheckUnsubscribeToken("id-1", unsubtoken.Issue("id-1", "other-secret")))
	assert.False(t, svc.CheckUnsubscribeToken("id-1", "not-a-token"))
}
