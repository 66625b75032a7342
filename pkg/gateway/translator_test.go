package gateway

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEvent_BodyHandling(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{"No body", "", "", ""},
		{"Single empty JSON field collapses", `{"foo":""}`, "application/json", "foo"},
		{"Single non-empty JSON field unchanged", `{"foo":"bar"}`, "application/json", `{"foo":"bar"}`},
		{"Two empty JSON fields unchanged", `{"a":"","b":""}`, "application/json", `{"a":"","b":""}`},
		{"Numeric JSON field unchanged", `{"a":0}`, "application/json", `{"a":0}`},
		{"Form single empty field collapses", "token=", "application/x-www-form-urlencoded", "token"},
		{"Form bare key collapses", "token", "application/x-www-form-urlencoded; charset=utf-8", "token"},
		{"Form with value unchanged", "a=1", "application/x-www-form-urlencoded", "a=1"},
		{"Plain text unchanged", "hello", "text/plain", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/count", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			event, err := ToEvent(req, "/count", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Body)
			assert.False(t, event.IsBase64Encoded)
		})
	}
}

func TestToEvent_BinaryBody(t *testing.T) {
	raw := []byte{0xff, 0xfe, 0x00, 0x01}
	req := httptest.NewRequest(http.MethodPut, "/upload", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/octet-stream")

	event, err := ToEvent(req, "/upload", nil)
	require.NoError(t, err)
	assert.True(t, event.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), event.Body)
}

func TestToEvent_Envelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/42?fields=name&tag=a&tag=b", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Add("X-Trace", "1")
	req.Header.Add("X-Trace", "2")

	event, err := ToEvent(req, "/users/{id}", map[string]string{"id": "42"})
	require.NoError(t, err)

	assert.Equal(t, "/users/{id}", event.Resource)
	assert.Equal(t, "/users/42", event.Path)
	assert.Equal(t, "GET", event.HTTPMethod)
	assert.Equal(t, "", event.Body)

	assert.Equal(t, "curl/8.0", event.Headers["user-agent"])
	assert.Equal(t, "1", event.Headers["x-trace"])
	assert.Equal(t, []string{"1", "2"}, event.MultiValueHeaders["x-trace"])
	assert.Equal(t, "example.com", event.Headers["host"])
	assert.Equal(t, []string{"example.com"}, event.MultiValueHeaders["host"])

	assert.Equal(t, "name", event.QueryStringParameters["fields"])
	assert.Equal(t, "a", event.QueryStringParameters["tag"])
	assert.Equal(t, []string{"a", "b"}, event.MultiValueQueryStringParameters["tag"])

	assert.Equal(t, map[string]string{"id": "42"}, event.PathParameters)

	rc := event.RequestContext
	assert.Equal(t, "prod", rc.Stage)
	assert.Equal(t, "123456789012", rc.AccountID)
	assert.Equal(t, "c6af9ac6-7b61-11e6-9a41-93e8deadbeef", rc.RequestID)
	assert.Equal(t, "HTTP/1.1", rc.Protocol)
	assert.Equal(t, "192.0.2.1", rc.Identity.SourceIP)
	assert.Equal(t, "curl/8.0", rc.Identity.UserAgent)
	assert.Equal(t, "1234567890", rc.APIID)
}

func TestToEvent_NoQueryOrParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	event, err := ToEvent(req, "/count", map[string]string{})
	require.NoError(t, err)

	assert.Nil(t, event.QueryStringParameters)
	assert.Nil(t, event.PathParameters)
}

func TestWriteResponse(t *testing.T) {
	tests := []struct {
		name        string
		resp        events.APIGatewayProxyResponse
		wantStatus  int
		wantBody    string
		wantCType   string
		wantHeaders map[string]string
	}{
		{
			name:       "JSON body compacted",
			resp:       events.APIGatewayProxyResponse{StatusCode: 201, Body: "{ \"foo\" : \"bar\" }"},
			wantStatus: 201,
			wantBody:   `{"foo":"bar"}`,
			wantCType:  "application/json; charset=utf-8",
		},
		{
			name:       "Numeric body is JSON",
			resp:       events.APIGatewayProxyResponse{StatusCode: 200, Body: "3"},
			wantStatus: 200,
			wantBody:   "3",
			wantCType:  "application/json; charset=utf-8",
		},
		{
			name:       "Non JSON body falls back to text",
			resp:       events.APIGatewayProxyResponse{StatusCode: 200, Body: "<h1>oi</h1>"},
			wantStatus: 200,
			wantBody:   "<h1>oi</h1>",
			wantCType:  "text/html; charset=utf-8",
		},
		{
			name:       "Empty body",
			resp:       events.APIGatewayProxyResponse{StatusCode: 204},
			wantStatus: 204,
			wantBody:   "",
		},
		{
			name:       "Zero status becomes 200",
			resp:       events.APIGatewayProxyResponse{Body: `{"ok":true}`},
			wantStatus: 200,
			wantBody:   `{"ok":true}`,
			wantCType:  "application/json; charset=utf-8",
		},
		{
			name: "Handler headers preserved",
			resp: events.APIGatewayProxyResponse{
				StatusCode: 302,
				Headers:    map[string]string{"Location": "/login", "Content-Type": "text/plain"},
				Body:       "redirect",
			},
			wantStatus:  302,
			wantBody:    "redirect",
			wantCType:   "text/plain",
			wantHeaders: map[string]string{"Location": "/login"},
		},
		{
			name: "Base64 body decoded",
			resp: events.APIGatewayProxyResponse{
				StatusCode:      200,
				Headers:         map[string]string{"Content-Type": "image/png"},
				Body:            base64.StdEncoding.EncodeToString([]byte("PNG")),
				IsBase64Encoded: true,
			},
			wantStatus: 200,
			wantBody:   "PNG",
			wantCType:  "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteResponse(rec, tt.resp))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			if tt.wantCType != "" {
				assert.Equal(t, tt.wantCType, rec.Header().Get("Content-Type"))
			}
			for k, v := range tt.wantHeaders {
				assert.Equal(t, v, rec.Header().Get(k))
			}
		})
	}
}

func TestWriteResponse_MultiValueHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteResponse(rec, events.APIGatewayProxyResponse{
		StatusCode:        200,
		MultiValueHeaders: map[string][]string{"Set-Cookie": {"a=1", "b=2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=1", "b=2"}, rec.Header().Values("Set-Cookie"))
}

func TestWriteResponse_InvalidBase64(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteResponse(rec, events.APIGatewayProxyResponse{StatusCode: 200, Body: "***", IsBase64Encoded: true})
	assert.Error(t, err)
}

func TestWriteResponse_InvalidStatusWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteResponse(rec, events.APIGatewayProxyResponse{
		StatusCode: 42,
		Headers:    map[string]string{"X-Custom": "1"},
		Body:       `{"a":1}`,
	})

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.False(t, rec.Flushed)
	assert.Empty(t, rec.Header().Get("X-Custom"))
	assert.Empty(t, rec.Body.String())
}
