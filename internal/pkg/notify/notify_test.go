package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/contoso-notify/internal/application/notification"
	"github.com/contoso-notify/internal/domain"
	"github.com/contoso-notify/internal/infrastructure/memqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, change domain.EntityChange) bool {
	return m.Called(ctx, change).Bool(0)
}

type failingTransport struct{}

func (failingTransport) Enqueue(context.Context, *domain.Notification) error {
	return domain.ErrTransport
}
func (failingTransport) TryDequeue(context.Context) (*domain.Notification, error) { return nil, nil }

var courseCreated = domain.EntityChange{EntityType: "Course", EntityID: "1050", Operation: domain.OperationCreate, DisplayName: "Chemistry"}

func TestAfterCommit_SendsOnlyAfterSuccess(t *testing.T) {
	s := &mockSender{}
	var order []string
	s.On("Send", mock.Anything, courseCreated).Run(func(mock.Arguments) { order = append(order, "send") }).Return(true)

	err := AfterCommit(context.Background(), s, courseCreated, func(context.Context) error {
		order = append(order, "commit")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"commit", "send"}, order)
	s.AssertExpectations(t)
}

func TestAfterCommit_FailedCommitSendsNothing(t *testing.T) {
	s := &mockSender{}
	commitErr := errors.New("unique constraint")

	err := AfterCommit(context.Background(), s, courseCreated, func(context.Context) error { return commitErr })
	assert.Same(t, commitErr, err)
	s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestAfterCommit_FailingTransportDoesNotFailCaller(t *testing.T) {
	svc := notification.NewService(failingTransport{})
	saved := false

	err := AfterCommit(context.Background(), svc, courseCreated, func(context.Context) error {
		saved = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, saved)
}

func TestCommitted(t *testing.T) {
	q := memqueue.New(0)
	svc := notification.NewService(q)
	ctx := context.Background()

	assert.False(t, Committed(ctx, svc, errors.New("rolled back"), courseCreated))
	assert.Equal(t, 0, q.Len())

	assert.True(t, Committed(ctx, svc, nil, courseCreated))
	assert.Equal(t, 1, q.Len())

	assert.False(t, Committed(ctx, nil, nil, courseCreated))
}
