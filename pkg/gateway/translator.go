package gateway

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

// Valores fixos do contexto sintético. Não representam uma requisição real.
const (
	placeholderRequestID   = "c6af9ac6-7b61-11e6-9a41-93e8deadbeef"
	placeholderRequestTime = "09/Apr/2015:12:34:56 +0000"
	placeholderEpoch       = 1428582896000
	placeholderAccountID   = "123456789012"
	placeholderResourceID  = "123456"
	placeholderStage       = "prod"
	placeholderAPIID       = "1234567890"
	placeholderDomainName  = "1234567890.execute-api.us-east-1.amazonaws.com"
)

// ToEvent converte a requisição HTTP no evento do API Gateway entregue ao handler.
// Um corpo ausente vira string vazia.
func ToEvent(r *http.Request, resource string, params map[string]string) (events.APIGatewayProxyRequest, error) {
	var raw []byte
	if r.Body != nil {
		var err error
		if raw, err = io.ReadAll(r.Body); err != nil {
			return events.APIGatewayProxyRequest{}, fmt.Errorf("falha ao ler corpo da requisição: %w", err)
		}
		defer r.Body.Close()
	}

	body, isBase64 := translateBody(raw, r.Header.Get("Content-Type"))
	headers, multiHeaders := flattenHeaders(r.Header)
	// net/http tira o Host de r.Header
	if r.Host != "" {
		if _, ok := headers["host"]; !ok {
			headers["host"] = r.Host
			multiHeaders["host"] = []string{r.Host}
		}
	}
	query, multiQuery := flattenValues(r.URL.Query())

	var pathParams map[string]string
	if len(params) > 0 {
		pathParams = make(map[string]string, len(params))
		for k, v := range params {
			pathParams[k] = v
		}
	}

	return events.APIGatewayProxyRequest{
		Resource:                        resource,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         headers,
		MultiValueHeaders:               multiHeaders,
		QueryStringParameters:           query,
		MultiValueQueryStringParameters: multiQuery,
		PathParameters:                  pathParams,
		Body:                            body,
		IsBase64Encoded:                 isBase64,
		RequestContext: events.APIGatewayProxyRequestContext{
			AccountID:         placeholderAccountID,
			ResourceID:        placeholderResourceID,
			Stage:             placeholderStage,
			DomainName:        placeholderDomainName,
			RequestID:         placeholderRequestID,
			ExtendedRequestID: placeholderRequestID,
			Protocol:          r.Proto,
			ResourcePath:      resource,
			Path:              r.URL.Path,
			HTTPMethod:        r.Method,
			RequestTime:       placeholderRequestTime,
			RequestTimeEpoch:  placeholderEpoch,
			APIID:             placeholderAPIID,
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP(r.RemoteAddr),
				UserAgent: r.UserAgent(),
			},
		},
	}, nil
}

// translateBody aplica o colapso de campo único e codifica em base64 corpos binários.
func translateBody(raw []byte, contentType string) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	if key, ok := singleEmptyField(raw, contentType); ok {
		return key, false
	}
	if !utf8.Valid(raw) {
		return base64.StdEncoding.EncodeToString(raw), true
	}
	return string(raw), false
}

// singleEmptyField reconhece o formulário legado de campo único:
// {"chave": ""} em JSON ou "chave" / "chave=" em form-urlencoded.
func singleEmptyField(raw []byte, contentType string) (string, bool) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil || len(values) != 1 {
			return "", false
		}
		for k, v := range values {
			if len(v) == 1 && v[0] == "" {
				return k, true
			}
		}

	default:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || len(obj) != 1 {
			return "", false
		}
		for k, v := range obj {
			var s string
			if json.Unmarshal(v, &s) == nil && s == "" {
				return k, true
			}
		}
	}
	return "", false
}

// Cabeçalhos em minúsculas, como o servidor de desenvolvimento original os entregava.
func flattenHeaders(h http.Header) (map[string]string, map[string][]string) {
	single := make(map[string]string, len(h))
	multi := make(map[string][]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		key := strings.ToLower(k)
		single[key] = v[0]
		multi[key] = append([]string(nil), v...)
	}
	return single, multi
}

func flattenValues(values url.Values) (map[string]string, map[string][]string) {
	if len(values) == 0 {
		return nil, nil
	}
	single := make(map[string]string, len(values))
	multi := make(map[string][]string, len(values))
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		single[k] = v[0]
		multi[k] = append([]string(nil), v...)
	}
	return single, multi
}

func sourceIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// ErrInvalidStatus indica um statusCode que não pode ser enviado ao cliente.
var ErrInvalidStatus = errors.New("statusCode inválido")

// WriteResponse escreve o resultado do handler na resposta HTTP. Status 0 vira 200.
// Corpo JSON é reemitido compacto como application/json; qualquer outro corpo
// segue como texto; corpo vazio gera resposta vazia.
// Um status fora de 100..599 é rejeitado antes de qualquer escrita (ErrInvalidStatus).
func WriteResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) error {
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if status < 100 || status > 599 {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}

	header := w.Header()
	for k, v := range resp.Headers {
		header.Set(k, v)
	}
	for k, values := range resp.MultiValueHeaders {
		header.Del(k)
		for _, v := range values {
			header.Add(k, v)
		}
	}

	if resp.Body == "" {
		w.WriteHeader(status)
		return nil
	}

	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return fmt.Errorf("corpo base64 inválido: %w", err)
		}
		setDefaultContentType(header, "application/octet-stream")
		w.WriteHeader(status)
		_, err = w.Write(decoded)
		return err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(resp.Body)); err == nil {
		setDefaultContentType(header, "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, err = w.Write(compact.Bytes())
		return err
	}

	setDefaultContentType(header, "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.WriteString(w, resp.Body)
	return err
}

func setDefaultContentType(h http.Header, value string) {
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", value)
	}
}
