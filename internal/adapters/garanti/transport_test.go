package garanti

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTransport(audit bool) (*Transport, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	transport := NewTransport(5*time.Second, audit, zap.New(core))
	return transport, logs
}

func TestTransport_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contentTypeForm, r.Header.Get("Content-Type"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	transport, _ := newObservedTransport(false)
	body, err := transport.Send(context.Background(), http.MethodPost, server.URL, []byte("a=b"), contentTypeForm)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestTransport_Send_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport, _ := newObservedTransport(false)
	_, err := transport.Send(context.Background(), http.MethodPost, server.URL, nil, contentTypeForm)

	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeTransport))
}

func TestTransport_Send_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	transport, _ := newObservedTransport(false)
	_, err := transport.Send(context.Background(), http.MethodPost, server.URL, nil, contentTypeForm)

	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeTransport))
}

func TestTransport_AuditLogging_RedactsCardNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("response with pan 4111111111111111 embedded"))
	}))
	defer server.Close()

	transport, logs := newObservedTransport(true)
	_, err := transport.Send(context.Background(), http.MethodPost, server.URL,
		[]byte("cardnumber=4111111111111111&cardcvv2=123"), contentTypeForm)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		for _, field := range entry.Context {
			if field.Key != "body" {
				continue
			}
			assert.NotContains(t, field.String, "4111111111111111", "full PAN must never be logged")
			assert.Contains(t, field.String, "****1111")
		}
	}
}

func TestTransport_AuditDisabled_NothingLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	transport, logs := newObservedTransport(false)
	_, err := transport.Send(context.Background(), http.MethodPost, server.URL,
		[]byte("cardnumber=4111111111111111"), contentTypeForm)
	require.NoError(t, err)

	assert.Zero(t, logs.Len())
}
