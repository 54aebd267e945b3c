package circuit_breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/book-catalog/pkg/circuit_breaker"
	"github.com/stretchr/testify/require"
)

var (
	errService = errors.New("service error")
	ok         = func() error { return nil }
	failing    = func() error { return errService }
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()
	type fields struct {
		recordLength     int
		timeout          time.Duration
		percentile       float64
		recoveryRequests int
	}
	tests := []struct {
		name   string
		fields fields
		calls  []func() error
		want   circuit_breaker.Status
	}{
		{
			name:   "successes keep it closed",
			fields: fields{recordLength: 4, timeout: time.Minute, percentile: 0.5, recoveryRequests: 1},
			calls:  []func() error{ok, ok, ok, ok, ok},
			want:   circuit_breaker.Closed,
		},
		{
			name:   "failures below percentile",
			fields: fields{recordLength: 4, timeout: time.Minute, percentile: 0.5, recoveryRequests: 1},
			calls:  []func() error{failing, ok, ok, ok},
			want:   circuit_breaker.Closed,
		},
		{
			name:   "failures reach percentile",
			fields: fields{recordLength: 4, timeout: time.Minute, percentile: 0.5, recoveryRequests: 1},
			calls:  []func() error{failing, ok, failing},
			want:   circuit_breaker.Open,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cb := circuit_breaker.New(tt.fields.recordLength, tt.fields.timeout, tt.fields.percentile, tt.fields.recoveryRequests)
			for _, call := range tt.calls {
				_ = cb.Call(call)
			}
			require.Equal(t, tt.want, cb.State())
		})
	}
}

func Test_circuitBreaker_OpenRejects(t *testing.T) {
	cb := circuit_breaker.New(2, time.Minute, 0.5, 1)
	require.ErrorIs(t, cb.Call(failing), errService)
	require.Equal(t, circuit_breaker.Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)
	require.False(t, called)

	cb.Reset()
	require.Equal(t, circuit_breaker.Closed, cb.State())
	require.NoError(t, cb.Call(ok))
}

func Test_circuitBreaker_Recovery(t *testing.T) {
	cb := circuit_breaker.New(2, 20*time.Millisecond, 0.5, 2)
	_ = cb.Call(failing)
	require.Equal(t, circuit_breaker.Open, cb.State())

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, circuit_breaker.HalfOpen, cb.State())
	require.NoError(t, cb.Call(ok))
	require.Equal(t, circuit_breaker.Closed, cb.State())

	_ = cb.Call(failing)
	require.Equal(t, circuit_breaker.Open, cb.State())
	time.Sleep(40 * time.Millisecond)
	require.ErrorIs(t, cb.Call(failing), errService)
	require.Equal(t, circuit_breaker.Open, cb.State())
}
