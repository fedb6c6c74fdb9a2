// Package swaggerkit mounts the Swagger UI and the generated OpenAPI document
package swaggerkit

import (
	"net/http"
	"strings"

	phttp "streamtags/internal/platform/net/http"
	"streamtags/internal/services/api/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures the docs mount
type Options struct {
	Enabled bool
	// Path is where the UI is served; doc.json lives beneath it
	Path string
	// Server is the base URL the documented paths are relative to
	Server      string
	TitleSuffix string
}

// Mount serves the UI at Path and the spec at Path/doc.json when enabled
func Mount(r phttp.Router, o Options) {
	if !o.Enabled {
		return
	}
	base := "/" + strings.Trim(o.Path, "/")
	if base == "/" {
		base = "/swagger"
	}
	if o.Server == "" {
		o.Server = "/"
	}

	r.Get(base, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base+"/", http.StatusPermanentRedirect)
	})
	r.Get(base+"/doc.json", serveDocJSON(o))
	r.Handle(base+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
		httpSwagger.URL(base+"/doc.json"),
	))
}
