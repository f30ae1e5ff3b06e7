// Package apidocs loads and validates the OpenAPI document served under
// /docs/api/v1.
package apidocs

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultPath is the location of the document relative to the project root
const DefaultPath = "public/docs/v1/openapi.yml"

// Load reads and validates the OpenAPI document at path
func Load(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document %s: %w", path, err)
	}
	return doc, nil
}

var paramPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// FiberPath converts an OpenAPI path template into fiber route syntax
func FiberPath(p string) string {
	return paramPattern.ReplaceAllString(p, ":$1")
}

// Operations lists every documented operation as "METHOD /fiber/path",
// sorted, with server base paths applied.
func Operations(doc *openapi3.T) []string {
	base := ""
	if len(doc.Servers) > 0 {
		base = strings.TrimRight(doc.Servers[0].URL, "/")
	}

	var ops []string
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			ops = append(ops, strings.ToUpper(method)+" "+FiberPath(base+path))
		}
	}
	sort.Strings(ops)
	return ops
}
