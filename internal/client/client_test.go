package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bargen/bargen-backend/internal/bargains"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(payload))
}

func TestSubmitBargainSendsSessionAndIdempotencyKey(t *testing.T) {
	productID := uuid.New()
	bargainID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bargains", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var body submitBargainRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, productID, body.ProductID)
		assert.Equal(t, int64(0), body.DesiredPrice)

		writeEnvelope(t, w, http.StatusCreated, types.SuccessEnvelope{Data: bargains.BargainDTO{
			ID:           bargainID,
			ProductID:    productID,
			DesiredPrice: 0,
			Status:       "pending",
		}})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL + "/", Token: "tok-1"})
	require.NoError(t, err)

	got, err := c.SubmitBargain(context.Background(), productID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, bargainID, got.ID)
	assert.Equal(t, int64(0), got.DesiredPrice)
}

func TestReadsDoNotSendIdempotencyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(t, w, http.StatusOK, types.SuccessEnvelope{Data: map[string]string{"role": "guest"}})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL})
	require.NoError(t, err)
	role, err := c.MyRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "guest", string(role))
}

func TestErrorEnvelopeDecodesToTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusBadRequest, types.ErrorEnvelope{Error: types.APIError{
			Code:      string(pkgerrors.CodeValidation),
			Message:   "desired price must be >= 0",
			RequestID: "req-7",
		}})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL, Token: "tok"})
	require.NoError(t, err)

	_, err = c.SubmitBargain(context.Background(), uuid.New(), -1, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, Validation, Classify(err))
	assert.Equal(t, "desired price must be >= 0", UserMessage(err))
	assert.Equal(t, "req-7", RequestID(err))
}

func TestUnauthorizedMapsToLoginPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeUnauthorized),
			Message: "missing credentials",
		}})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.AddToCart(context.Background(), uuid.New(), 1)
	assert.Equal(t, AuthRequired, Classify(err))
	assert.Equal(t, loginPromptMessage, UserMessage(err))
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	c, err := New(Session{BaseURL: base}, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.ListShops(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, Unavailable, Classify(err))
}

func TestNonEnvelopeErrorFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = c.ListShops(context.Background())
	assert.Equal(t, Unavailable, Classify(err))
}

func TestWithRetryReplaysSameIdempotencyKey(t *testing.T) {
	var attempts atomic.Int32
	keys := make(chan string, 3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		if attempts.Add(1) < 3 {
			writeEnvelope(t, w, http.StatusServiceUnavailable, types.ErrorEnvelope{Error: types.APIError{
				Code:    string(pkgerrors.CodeDependency),
				Message: "dependency unavailable",
			}})
			return
		}
		writeEnvelope(t, w, http.StatusOK, types.SuccessEnvelope{Data: map[string]any{"productId": uuid.Nil, "quantity": 2}})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL, Token: "tok"}, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	item, err := c.AddToCart(context.Background(), uuid.New(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
	assert.Equal(t, int32(3), attempts.Load())

	first := <-keys
	assert.Equal(t, first, <-keys)
	assert.Equal(t, first, <-keys)
}

func TestRetryDoesNotRepeatValidationErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		writeEnvelope(t, w, http.StatusBadRequest, types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeValidation),
			Message: "quantity must be at least 1",
		}})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL, Token: "tok"}, WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	_, err = c.AddToCart(context.Background(), uuid.New(), 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestNullDataDecodesToNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, types.SuccessEnvelope{Data: nil})
	}))
	defer server.Close()

	c, err := New(Session{BaseURL: server.URL, Token: "tok"})
	require.NoError(t, err)
	selected, err := c.GetSelectedInsurance(context.Background())
	require.NoError(t, err)
	assert.Nil(t, selected)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Session{})
	assert.Error(t, err)
}
