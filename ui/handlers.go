// Package ui serves the HTML view controllers for registered resources.
package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/garrett9/servicerepo/core"
	"github.com/garrett9/servicerepo/middleware/auth"

	"github.com/a-h/templ"
)

// Handler routes browser traffic for a set of registered resources.
type Handler struct {
	basePath string
	title    string
	authCfg  *auth.Config
	services map[string]*core.Service
	order    []string
}

// NewHandler creates a view handler serving pages under basePath.
func NewHandler(basePath, title string) *Handler {
	return &Handler{
		basePath: strings.TrimSuffix(basePath, "/"),
		title:    title,
		services: make(map[string]*core.Service),
	}
}

// WithAuth enables authentication for all pages served by this handler.
func (h *Handler) WithAuth(cfg auth.Config) *Handler {
	h.authCfg = &cfg
	return h
}

// Register adds resources to the handler in display order.
func (h *Handler) Register(services ...*core.Service) *Handler {
	for _, svc := range services {
		route := svc.Resource().RouteName()
		if _, exists := h.services[route]; !exists {
			h.order = append(h.order, route)
		}
		h.services[route] = svc
	}
	return h
}

// Router builds the HTTP handler, wrapping everything in the auth
// middleware when configured.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	if h.authCfg != nil && h.authCfg.Enabled {
		mux.HandleFunc(h.basePath+h.authCfg.LoginPath, h.loginHandler)
		mux.HandleFunc(h.basePath+h.authCfg.LogoutPath, h.logoutHandler)
	}

	mux.HandleFunc(h.basePath+"/", h.route)

	var final http.Handler = mux
	if h.authCfg != nil {
		final = auth.NewMiddleware(h.authCfg)(final)
	}
	return final
}

// route dispatches on path segments below the base path.
func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.basePath)
	path = strings.Trim(path, "/")

	if path == "" {
		h.renderIndex(w, r)
		return
	}

	segments := strings.Split(path, "/")
	svc, exists := h.services[segments[0]]
	if !exists {
		http.NotFound(w, r)
		return
	}

	switch len(segments) {
	case 1:
		if r.Method == http.MethodPost {
			h.handleCreate(w, r, svc)
			return
		}
		h.renderList(w, r, svc)
	case 2:
		if segments[1] == "new" {
			h.renderForm(w, r, svc, nil, nil, false, "")
			return
		}
		if r.Method == http.MethodPost {
			if r.FormValue("_method") == "DELETE" {
				h.handleDelete(w, r, svc, segments[1])
				return
			}
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.renderDetail(w, r, svc, segments[1])
	case 3:
		if segments[2] != "edit" {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodPost {
			if r.FormValue("_method") == "PUT" {
				h.handleUpdate(w, r, svc, segments[1])
				return
			}
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.renderEditForm(w, r, svc, segments[1])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, content templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := Layout(title, content).Render(r.Context(), w); err != nil {
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
	}
}

func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request) {
	resources := make([]*core.Resource, 0, len(h.order))
	for _, route := range h.order {
		resources = append(resources, h.services[route].Resource())
	}
	h.render(w, r, http.StatusOK, h.title, Index(h.basePath, resources))
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, svc *core.Service) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	orderBy := q.Get("order_by")
	dir := core.ParseSortDirection(q.Get("dir"))

	result, err := svc.Paginate(r.Context(), page, perPage, nil, nil, orderBy, dir)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, svc.Resource().PluralName, List(h.basePath, svc.Resource(), result))
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, svc *core.Service, pk string) {
	item, err := svc.Find(r.Context(), identifierFromSegment(pk))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, svc.Resource().DisplayName, Detail(h.basePath, svc.Resource(), item))
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, svc *core.Service, values map[string]string, errs core.ValidationErrors, isEdit bool, pk string) {
	status := http.StatusOK
	if !errs.Empty() {
		status = http.StatusUnprocessableEntity
	}
	title := "Create " + svc.Resource().DisplayName
	if isEdit {
		title = "Edit " + svc.Resource().DisplayName
	}
	h.render(w, r, status, title, Form(h.basePath, svc.Resource(), values, errs, isEdit, pk))
}

func (h *Handler) renderEditForm(w http.ResponseWriter, r *http.Request, svc *core.Service, pk string) {
	item, err := svc.Find(r.Context(), identifierFromSegment(pk))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderForm(w, r, svc, formValues(svc.Resource(), item), nil, true, pk)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, svc *core.Service) {
	data, raw, err := parseForm(r, svc.Resource())
	if err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if _, err := svc.Create(r.Context(), data); err != nil {
		if validation, ok := asValidation(err); ok {
			h.renderForm(w, r, svc, raw, validation.Errors, false, "")
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, ListURL(h.basePath, svc.Resource()).WithSuccess("create").String(), http.StatusSeeOther)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, svc *core.Service, pk string) {
	data, raw, err := parseForm(r, svc.Resource())
	if err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if err := svc.Update(r.Context(), identifierFromSegment(pk), data); err != nil {
		if validation, ok := asValidation(err); ok {
			h.renderForm(w, r, svc, raw, validation.Errors, true, pk)
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, ListURL(h.basePath, svc.Resource()).WithSuccess("update").String(), http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, svc *core.Service, pk string) {
	if err := svc.Delete(r.Context(), identifierFromSegment(pk)); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, ListURL(h.basePath, svc.Resource()).WithSuccess("delete").String(), http.StatusSeeOther)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	http.Error(w, fmt.Sprintf("Request failed: %v", err), http.StatusInternalServerError)
}

// loginHandler shows the login form and processes submissions.
func (h *Handler) loginHandler(w http.ResponseWriter, r *http.Request) {
	cfg := h.authCfg
	if cfg == nil || !cfg.Enabled {
		http.NotFound(w, r)
		return
	}

	loginPath := h.basePath + cfg.LoginPath

	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "Sign in", LoginForm(loginPath, r.URL.Query().Get("return"), ""))
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	user, err := cfg.Authenticator(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.render(w, r, http.StatusUnauthorized, "Sign in", LoginForm(loginPath, r.FormValue("return"), "Invalid username or password"))
		return
	}

	sessionID, err := cfg.SessionStore.CreateSession(r.Context(), user)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, auth.CreateSessionCookie(sessionID))

	target := r.FormValue("return")
	if target == "" {
		target = cfg.LoginRedirect
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// logoutHandler clears the session and redirects.
func (h *Handler) logoutHandler(w http.ResponseWriter, r *http.Request) {
	cfg := h.authCfg
	if cfg == nil || !cfg.Enabled {
		http.NotFound(w, r)
		return
	}

	if cookie, err := r.Cookie("servicerepo_session"); err == nil {
		cfg.SessionStore.DeleteSession(r.Context(), cookie.Value)
	}

	http.SetCookie(w, auth.DeleteSessionCookie())
	http.Redirect(w, r, cfg.LogoutRedirect, http.StatusSeeOther)
}

// identifierFromSegment parses a path segment into a record identifier.
// Numeric segments address integer primary keys.
func identifierFromSegment(raw string) core.Identifier {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return core.ByKey(n)
	}
	return core.ByKey(raw)
}

// parseForm reads the submitted form into typed values for the service
// layer, plus the raw strings for re-rendering on validation failure.
func parseForm(r *http.Request, resource *core.Resource) (map[string]any, map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, err
	}

	data := make(map[string]any)
	raw := make(map[string]string)
	for i := range resource.Fields {
		f := &resource.Fields[i]
		if !f.Fillable() {
			continue
		}
		values, present := r.PostForm[f.JSONName]
		if !present || len(values) == 0 {
			continue
		}
		raw[f.JSONName] = values[0]
		data[f.Name] = coerceFormValue(f, values[0])
	}
	return data, raw, nil
}

// coerceFormValue converts a form string into the field's Go type so the
// record filler can assign it. Empty optional values become nil.
func coerceFormValue(f *core.FieldInfo, value string) any {
	if value == "" && strings.HasPrefix(f.Type, "*") {
		return nil
	}
	switch strings.TrimPrefix(f.Type, "*") {
	case "int", "int8", "int16", "int32", "int64":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case "uint", "uint8", "uint16", "uint32", "uint64":
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	case "float32", "float64":
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	case "bool":
		return value == "true" || value == "on" || value == "1"
	}
	return value
}

// formValues renders an existing record's fields back into form strings.
func formValues(resource *core.Resource, item any) map[string]string {
	values := make(map[string]string)
	for i := range resource.Fields {
		f := &resource.Fields[i]
		if !f.Fillable() {
			continue
		}
		values[f.JSONName] = displayValue(item, f)
	}
	return values
}

// asValidation unwraps a validation error for form re-rendering.
func asValidation(err error) (*core.ValidationError, bool) {
	var validation *core.ValidationError
	ok := errors.As(err, &validation)
	return validation, ok
}
