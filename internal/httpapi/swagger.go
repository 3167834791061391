//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

type apiDoc struct{}

func (apiDoc) ReadDoc() string { return swaggerDoc }

func init() {
	swag.Register(swag.Name, apiDoc{})
}

// MountSwagger serves the Swagger UI at /swagger/ and the spec at /swagger/doc.json.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
