// Package api exposes a resource's service as a JSON HTTP API.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/garrett9/servicerepo/core"

	"github.com/google/uuid"
)

// Controller serves the standard JSON endpoints for a single resource.
type Controller struct {
	service *core.Service
}

// NewController creates an API controller backed by the given service.
func NewController(service *core.Service) *Controller {
	return &Controller{service: service}
}

// Service returns the underlying service.
func (c *Controller) Service() *core.Service {
	return c.service
}

// Register mounts the resource's routes on the mux under prefix, e.g.
// "/api". The route segment is derived from the resource's plural name.
func (c *Controller) Register(mux *http.ServeMux, prefix string) {
	base := strings.TrimSuffix(prefix, "/") + "/" + c.service.Resource().RouteName()

	mux.Handle("GET "+base, requestID(http.HandlerFunc(c.index)))
	mux.Handle("GET "+base+"/count", requestID(http.HandlerFunc(c.count)))
	mux.Handle("GET "+base+"/stats/created-per-day/{days}", requestID(http.HandlerFunc(c.createdPerDay)))
	mux.Handle("GET "+base+"/{id}", requestID(http.HandlerFunc(c.show)))
	mux.Handle("POST "+base, requestID(http.HandlerFunc(c.create)))
	mux.Handle("PUT "+base+"/{id}", requestID(http.HandlerFunc(c.update)))
	mux.Handle("DELETE "+base+"/{id}", requestID(http.HandlerFunc(c.delete)))
}

// requestID tags every response with an X-Request-ID header, honoring one
// supplied by the caller.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// identifierFromPath builds the record identifier from the {id} path value.
// Numeric segments address integer primary keys; anything else is passed
// through as a string key (UUIDs and the like).
func identifierFromPath(r *http.Request) core.Identifier {
	raw := r.PathValue("id")
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return core.ByKey(n)
	}
	return core.ByKey(raw)
}

func (c *Controller) index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	orderBy := q.Get("order_by")
	dir := core.ParseSortDirection(q.Get("dir"))

	with := splitParam(q.Get("with"))

	// Free-text search across searchable fields takes precedence over
	// pagination so result ordering matches what the UI shows.
	if term := q.Get("q"); term != "" {
		terms := make(map[string]*string)
		for _, f := range c.service.Resource().Fields {
			if f.Searchable {
				t := term
				terms[f.Name] = &t
			}
		}
		items, err := c.service.Search(r.Context(), terms, nil, with)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, map[string]any{"items": items, "total": len(items)})
		return
	}

	result, err := c.service.Paginate(r.Context(), page, perPage, nil, with, orderBy, dir)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, result)
}

func (c *Controller) count(w http.ResponseWriter, r *http.Request) {
	n, err := c.service.Count(r.Context(), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, map[string]int64{"count": n})
}

func (c *Controller) createdPerDay(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.PathValue("days"))
	if err != nil || days < 1 {
		badRequest(w, "The number of days must be a positive integer.", nil)
		return
	}
	buckets, err := c.service.CountCreatedPerDayForDaysAgo(r.Context(), days, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, buckets)
}

func (c *Controller) show(w http.ResponseWriter, r *http.Request) {
	with := splitParam(r.URL.Query().Get("with"))
	item, err := c.service.Find(r.Context(), identifierFromPath(r), with...)
	if err != nil {
		writeError(w, err)
		return
	}
	ok(w, item)
}

func (c *Controller) create(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		badRequest(w, err.Error(), nil)
		return
	}
	pk, err := c.service.Create(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	created(w, map[string]any{"id": pk})
}

func (c *Controller) update(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		badRequest(w, err.Error(), nil)
		return
	}
	if err := c.service.Update(r.Context(), identifierFromPath(r), data); err != nil {
		writeError(w, err)
		return
	}
	ok(w, map[string]any{"message": "Record updated."})
}

func (c *Controller) delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), identifierFromPath(r)); err != nil {
		writeError(w, err)
		return
	}
	ok(w, map[string]any{"message": "Record deleted."})
}

func decodeBody(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid request body")
	}
	return data, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
