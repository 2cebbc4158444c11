package httplist

import (
	"encoding/json"
	"net/http"

	"github.com/friendsofgo/errors"
	"go.uber.org/zap"

	"github.com/nrfta/listing-go"
)

// HandlerOption configures a Handler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	logger *zap.Logger
}

// WithHandlerLogger sets the logger. Default: zap.NewNop().
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(o *handlerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Handler serves GET requests for one list resource. Query parameters are
// decoded with listing.ParseQuery and the page is written as
// {"data": [...], "meta": {...}}.
//
// Malformed parameters, page sizes above the configured maximum and
// *listing.QueryError from the lister (for instance an unknown sort field)
// are answered with 400, other lister failures with 500, both as
// {"error": "..."}.
type Handler[T any] struct {
	lister listing.Lister[T]
	cfg    *listing.PageConfig
	logger *zap.Logger
}

// NewHandler creates a Handler. A nil cfg means listing.NewPageConfig().
func NewHandler[T any](lister listing.Lister[T], cfg *listing.PageConfig, opts ...HandlerOption) *Handler[T] {
	o := handlerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		cfg = listing.NewPageConfig()
	}

	return &Handler[T]{lister: lister, cfg: cfg, logger: o.logger}
}

func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	q, err := listing.ParseQuery(r.URL.Query(), h.cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.lister.List(r.Context(), q)
	var queryErr *listing.QueryError
	if errors.As(err, &queryErr) {
		writeError(w, http.StatusBadRequest, queryErr.Error())
		return
	}
	if err != nil {
		h.logger.Error("list request failed",
			zap.String("path", r.URL.Path),
			zap.String("query", q.Key()),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if res == nil {
		res = &listing.Result[T]{}
	}
	if res.Data == nil {
		res.Data = []T{}
	}

	writeJSON(w, http.StatusOK, res)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
