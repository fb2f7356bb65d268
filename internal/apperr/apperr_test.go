package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/UnknownOlympus/scout/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"nil", nil, apperr.KindUnknown},
		{
			"client timeout",
			&url.Error{Op: "Post", URL: "http://example", Err: context.DeadlineExceeded},
			apperr.KindTimeout,
		},
		{"wrapped deadline", fmt.Errorf("request: %w", context.DeadlineExceeded), apperr.KindTimeout},
		{"dns failure", &url.Error{Op: "Get", Err: &net.DNSError{Err: "no such host", Name: "x"}}, apperr.KindConnectivity},
		{
			"connection refused",
			&url.Error{Op: "Get", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			apperr.KindConnectivity,
		},
		{"status", &apperr.StatusError{Service: "overpass", StatusCode: 500}, apperr.KindUpstreamHTTP},
		{"malformed", fmt.Errorf("%w: unexpected EOF", apperr.ErrMalformed), apperr.KindMalformed},
		{"local io", fmt.Errorf("%w: disk full", apperr.ErrLocalIO), apperr.KindLocalIO},
		{"input", fmt.Errorf("%w: letters", apperr.ErrInvalidInput), apperr.KindInvalidInput},
		{"anything else", errors.New("boom"), apperr.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Classify(tt.err))
		})
	}
}

func TestStatusError(t *testing.T) {
	busy := &apperr.StatusError{Service: "overpass", StatusCode: 504, Body: "busy"}
	other := &apperr.StatusError{Service: "nominatim", StatusCode: 429}

	assert.True(t, busy.Busy())
	assert.False(t, other.Busy())
	assert.True(t, apperr.IsBusy(fmt.Errorf("attempt 1: %w", busy)))
	assert.False(t, apperr.IsBusy(errors.New("504")))
	assert.Equal(t, "overpass API returned status 504: busy", busy.Error())
	assert.Equal(t, "nominatim API returned status 429", other.Error())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "timeout", apperr.KindTimeout.String())
	assert.Equal(t, "connectivity", apperr.KindConnectivity.String())
	assert.Equal(t, "unknown", apperr.Kind(99).String())
}
