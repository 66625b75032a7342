package invoke

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteLoader_Forward(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, rieInvocationPath, r.URL.Path)
		assert.Equal(t, "src/count/count.handlers.main", r.Header.Get(HandlerHeader))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"path":"/count"}`, string(body))

		w.Write([]byte(`{"statusCode":200,"body":"3"}`))
	}))
	defer server.Close()

	inv := New(NewRemoteLoader(server.URL+"/", time.Second))
	target := Target{Function: "Count", CodeURI: "src/count", Module: "count", Entry: "handlers.main"}

	out, err := inv.Invoke(context.Background(), target, []byte(`{"path":"/count"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"statusCode":200,"body":"3"}`, string(out))
}

func TestRemoteLoader_FunctionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Amz-Function-Error", "Unhandled")
		w.Write([]byte(`{"errorMessage":"tabela ausente","errorType":"ResourceNotFoundException"}`))
	}))
	defer server.Close()

	inv := New(NewRemoteLoader(server.URL, time.Second))
	_, err := inv.Invoke(context.Background(), Target{Function: "Count", Module: "count", Entry: "handler"}, []byte(`{}`))

	var invokeErr *Error
	require.ErrorAs(t, err, &invokeErr)
	assert.Equal(t, "Count", invokeErr.Function)
	assert.Equal(t, "ResourceNotFoundException", invokeErr.Type)
	assert.Equal(t, "tabela ausente", invokeErr.Message)
}

func TestRemoteLoader_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("runtime indisponível"))
	}))
	defer server.Close()

	inv := New(NewRemoteLoader(server.URL, time.Second))
	_, err := inv.Invoke(context.Background(), Target{Function: "Count", Module: "count", Entry: "handler"}, nil)

	var invokeErr *Error
	require.ErrorAs(t, err, &invokeErr)
	assert.Equal(t, "Runtime.RemoteError", invokeErr.Type)
	assert.Contains(t, invokeErr.Message, "502")
}
