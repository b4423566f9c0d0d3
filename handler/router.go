package handler

import (
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxRequestBody = 1 << 20

// Router serves the handler over plain HTTP for local development. Requests
// are converted to proxy events so both deployments share one code path.
// Only the mounted paths reach an endpoint; everything else is a 404.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	classify := h.adapt(routeClassify)
	query := h.adapt(routeQuery)

	r.HandleFunc("/classify", classify)
	r.HandleFunc("/query", query)
	r.Route("/.netlify/functions", func(r chi.Router) {
		r.HandleFunc("/classify", classify)
		r.HandleFunc("/query", query)
	})
	r.NotFound(h.adapt(""))
	return r
}

func (h *Handler) adapt(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		headers := make(map[string]string, len(r.Header))
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}
		if _, ok := headers[headerCorrelationID]; !ok {
			if id := middleware.GetReqID(r.Context()); id != "" {
				headers[headerCorrelationID] = id
			}
		}

		req := events.APIGatewayProxyRequest{
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Headers:    headers,
			Body:       string(body),
			RequestContext: events.APIGatewayProxyRequestContext{
				Identity: events.APIGatewayRequestIdentity{SourceIP: r.RemoteAddr},
			},
		}

		var resp events.APIGatewayProxyResponse
		switch route {
		case routeClassify:
			resp, err = h.HandleClassify(r.Context(), req)
		case routeQuery:
			resp, err = h.HandleQuery(r.Context(), req)
		default:
			resp = h.notFound(req)
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	}
}
