package ui

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/garrett9/servicerepo/core"
)

// URLBuilder provides a fluent interface for building view controller URLs
type URLBuilder struct {
	path   string
	params url.Values
}

// ListURL creates a URL builder for a resource's list page.
func ListURL(basePath string, resource *core.Resource) *URLBuilder {
	return &URLBuilder{
		path:   basePath + "/" + url.PathEscape(resource.RouteName()),
		params: make(url.Values),
	}
}

// PreserveFromRequest copies all user-facing parameters from the current
// request, skipping one-shot parameters like success messages.
func (b *URLBuilder) PreserveFromRequest(r *http.Request) *URLBuilder {
	for k, v := range r.URL.Query() {
		if isInternalParam(k) {
			continue
		}
		b.params[k] = v
	}
	return b
}

// WithSort sets sorting parameters
func (b *URLBuilder) WithSort(field string, dir core.SortDirection) *URLBuilder {
	if field != "" {
		b.params.Set("order_by", field)
		b.params.Set("dir", dir.String())
	}
	return b
}

// WithPage sets pagination parameters
func (b *URLBuilder) WithPage(page, perPage int) *URLBuilder {
	b.params.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		b.params.Set("per_page", strconv.Itoa(perPage))
	}
	return b
}

// WithSuccess tags the URL with a one-shot success message key.
func (b *URLBuilder) WithSuccess(kind string) *URLBuilder {
	b.params.Set("success", kind)
	return b
}

// String renders the URL
func (b *URLBuilder) String() string {
	if len(b.params) == 0 {
		return b.path
	}
	return b.path + "?" + b.params.Encode()
}

// isInternalParam reports whether a query parameter is one-shot state that
// should not survive into generated links.
func isInternalParam(key string) bool {
	return key == "success" || key == "return"
}
