package ui

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/garrett9/servicerepo/core"
	"github.com/garrett9/servicerepo/middleware/auth"

	"github.com/a-h/templ"
)

// Layout wraps page content in the HTML skeleton. The signed-in user, if
// any, is read from the render context.
func Layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title>`, templ.EscapeString(title)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f5f5}
nav{background:#1f2937;color:#fff;padding:0.75rem 1.5rem;display:flex;justify-content:space-between}
nav a{color:#fff;text-decoration:none;margin-right:1rem}
main{max-width:960px;margin:1.5rem auto;padding:0 1rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{text-align:left;padding:0.5rem 0.75rem;border-bottom:1px solid #e5e7eb}
.error{color:#b91c1c;font-size:0.875rem}
form label{display:block;margin-top:0.75rem;font-weight:600}
form input{width:100%;max-width:24rem;padding:0.4rem;margin-top:0.25rem}
button{margin-top:1rem;padding:0.5rem 1rem;background:#1f2937;color:#fff;border:0;cursor:pointer}
.pager a{margin-right:1rem}
</style></head><body><nav><div><a href="/">Home</a></div><div>`); err != nil {
			return err
		}
		if user, ok := auth.CurrentUser(ctx); ok {
			if _, err := fmt.Fprintf(w, `<span>%s</span> <a href="/logout">Logout</a>`, templ.EscapeString(user.Username)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</div></nav><main>`); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Index lists the registered resources with links to their list pages.
func Index(basePath string, resources []*core.Resource) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Resources</h1><ul>`); err != nil {
			return err
		}
		for _, res := range resources {
			if _, err := fmt.Fprintf(w, `<li><a href="%s/%s">%s</a></li>`,
				basePath, templ.EscapeString(res.RouteName()), templ.EscapeString(res.PluralName)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// List renders a paginated table of records.
func List(basePath string, resource *core.Resource, page *core.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		route := basePath + "/" + resource.RouteName()

		if _, err := fmt.Fprintf(w, `<h1>%s</h1><p><a href="%s/new">New %s</a> &middot; %d total</p><table><thead><tr>`,
			templ.EscapeString(resource.PluralName), route, templ.EscapeString(resource.DisplayName), page.Total); err != nil {
			return err
		}
		for i := range resource.Fields {
			if _, err := fmt.Fprintf(w, `<th>%s</th>`, templ.EscapeString(resource.Fields[i].DisplayName)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<th></th></tr></thead><tbody>`); err != nil {
			return err
		}

		for _, item := range page.Items {
			pk := fmt.Sprintf("%v", resource.PrimaryKeyValue(item))
			if _, err := io.WriteString(w, `<tr>`); err != nil {
				return err
			}
			for i := range resource.Fields {
				if _, err := fmt.Fprintf(w, `<td>%s</td>`, templ.EscapeString(displayValue(item, &resource.Fields[i]))); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, `<td><a href="%s/%s">View</a> <a href="%s/%s/edit">Edit</a></td></tr>`, route, pk, route, pk); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</tbody></table><p class="pager">`); err != nil {
			return err
		}
		if page.Page > 1 {
			if _, err := fmt.Fprintf(w, `<a href="%s">Previous</a>`, ListURL(basePath, resource).WithPage(page.Page-1, page.PerPage).String()); err != nil {
				return err
			}
		}
		if page.HasMore {
			if _, err := fmt.Fprintf(w, `<a href="%s">Next</a>`, ListURL(basePath, resource).WithPage(page.Page+1, page.PerPage).String()); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</p>`)
		return err
	})
}

// Detail renders a single record as a definition table with edit and delete
// controls.
func Detail(basePath string, resource *core.Resource, item any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		route := basePath + "/" + resource.RouteName()
		pk := fmt.Sprintf("%v", resource.PrimaryKeyValue(item))

		if _, err := fmt.Fprintf(w, `<h1>%s #%s</h1><table><tbody>`, templ.EscapeString(resource.DisplayName), templ.EscapeString(pk)); err != nil {
			return err
		}
		for i := range resource.Fields {
			f := &resource.Fields[i]
			if _, err := fmt.Fprintf(w, `<tr><th>%s</th><td>%s</td></tr>`,
				templ.EscapeString(f.DisplayName), templ.EscapeString(displayValue(item, f))); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `</tbody></table><p><a href="%s/%s/edit">Edit</a></p><form method="POST" action="%s/%s"><input type="hidden" name="_method" value="DELETE"><button type="submit">Delete</button></form>`,
			route, pk, route, pk)
		return err
	})
}

// Form renders the create/edit form. On validation failure the submitted
// values and per-field errors are rendered back into the form.
func Form(basePath string, resource *core.Resource, values map[string]string, errs core.ValidationErrors, isEdit bool, pk string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		route := basePath + "/" + resource.RouteName()

		title := "Create " + resource.DisplayName
		action := route
		if isEdit {
			title = "Edit " + resource.DisplayName
			action = route + "/" + pk
		}

		if _, err := fmt.Fprintf(w, `<h1>%s</h1><form method="POST" action="%s">`, templ.EscapeString(title), action); err != nil {
			return err
		}
		if isEdit {
			if _, err := io.WriteString(w, `<input type="hidden" name="_method" value="PUT">`); err != nil {
				return err
			}
		}

		for i := range resource.Fields {
			f := &resource.Fields[i]
			if !f.Fillable() {
				continue
			}
			required := ""
			if f.Required {
				required = " required"
			}
			if _, err := fmt.Fprintf(w, `<label for="%s">%s</label><input id="%s" name="%s" value="%s"%s>`,
				f.JSONName, templ.EscapeString(f.DisplayName), f.JSONName, f.JSONName, templ.EscapeString(values[f.JSONName]), required); err != nil {
				return err
			}
			for _, msg := range errs[f.JSONName] {
				if _, err := fmt.Fprintf(w, `<p class="error">%s</p>`, templ.EscapeString(msg)); err != nil {
					return err
				}
			}
		}

		_, err := io.WriteString(w, `<button type="submit">Save</button></form>`)
		return err
	})
}

// LoginForm renders the login page, optionally with a failure message.
func LoginForm(loginPath, returnURL, errorMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1>Sign in</h1><form method="POST" action="%s">`, loginPath); err != nil {
			return err
		}
		if errorMsg != "" {
			if _, err := fmt.Fprintf(w, `<p class="error">%s</p>`, templ.EscapeString(errorMsg)); err != nil {
				return err
			}
		}
		if returnURL != "" {
			if _, err := fmt.Fprintf(w, `<input type="hidden" name="return" value="%s">`, templ.EscapeString(returnURL)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<label for="username">Username</label><input id="username" name="username" required><label for="password">Password</label><input id="password" name="password" type="password" required><button type="submit">Sign in</button></form>`)
		return err
	})
}

// displayValue formats a record field for HTML output.
func displayValue(item any, f *core.FieldInfo) string {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	field := v.FieldByName(f.Name)
	if !field.IsValid() {
		return ""
	}
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return ""
		}
		field = field.Elem()
	}
	if t, ok := field.Interface().(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%v", field.Interface())
}
