package api

import (
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HTTPHandler serves fn on plain net/http by translating the request into
// an API Gateway proxy event and writing the proxy response back.
func HTTPHandler(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		query := r.URL.Query()
		request := events.APIGatewayProxyRequest{
			HTTPMethod:                      r.Method,
			Path:                            r.URL.Path,
			Headers:                         map[string]string{},
			MultiValueHeaders:               map[string][]string{},
			QueryStringParameters:           map[string]string{},
			MultiValueQueryStringParameters: map[string][]string{},
			Body:                            string(body),
		}

		// API Gateway keeps the last value in the single-value maps.
		for k, values := range r.Header {
			if len(values) == 0 {
				continue
			}
			request.Headers[k] = values[len(values)-1]
			request.MultiValueHeaders[k] = append([]string(nil), values...)
		}
		for k, values := range query {
			if len(values) == 0 {
				continue
			}
			request.QueryStringParameters[k] = values[len(values)-1]
			request.MultiValueQueryStringParameters[k] = append([]string(nil), values...)
		}

		resp, err := fn(r.Context(), request)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	})
}
