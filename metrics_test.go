package account_test

import (
	"context"
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSinkCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := account.NewMetricsSink(reg)

	f := newFixture(t, testOptions(), account.WithActivitySink(account.MultiActivitySink{sink, nil}))
	f.createCustomer(t, "metrics@example.com", 1)

	_, err := f.manager.Authenticate(f.ctx, "metrics@example.com", testPassword)
	require.NoError(t, err)
	_, err = f.manager.Authenticate(f.ctx, "metrics@example.com", "wrong")
	require.Error(t, err)
	_, err = f.manager.Authenticate(f.ctx, "metrics@example.com", "wrong")
	require.Error(t, err)

	counter := sink.Counter()
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(string(account.ActivityEventAccountCreated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(string(account.ActivityEventLoginSuccess))))
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues(string(account.ActivityEventLoginFailure))))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "customer_account_events_total", families[0].GetName())
}

func TestMultiActivitySinkReturnsFirstError(t *testing.T) {
	var calls int
	failing := account.ActivitySinkFunc(func(context.Context, account.ActivityEvent) error {
		calls++
		return assert.AnError
	})

	multi := account.MultiActivitySink{failing, failing}
	err := multi.Record(context.Background(), account.ActivityEvent{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
}
