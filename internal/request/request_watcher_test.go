package request_test

import (
	"context"
	"testing"

	"spa-portal/internal/request"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisNotifier_PublishChange(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	notifier := request.NewRedisNotifier(rdb)

	mock.ExpectPublish("requests:changed:Massage Therapy", "changed").SetVal(1)

	notifier.PublishChange(context.Background(), "Massage Therapy")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisNotifier_PublishChangeSwallowsErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	notifier := request.NewRedisNotifier(rdb)

	mock.ExpectPublish("requests:changed:Reception", "changed").SetErr(assert.AnError)

	// Best effort: a failed signal must not panic or propagate.
	notifier.PublishChange(context.Background(), "Reception")

	assert.NoError(t, mock.ExpectationsWereMet())
}
