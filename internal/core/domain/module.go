package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Module is a remote calculation service. It answers the JSON-RPC method
// "calculate" at URI/Name/rpc/.
type Module struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func NewModule(name, uri string) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") {
		return Module{}, fmt.Errorf("%w: name must be a non-empty path segment", ErrInvalidModule)
	}

	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Module{}, fmt.Errorf("%w: uri must be an absolute http(s) url", ErrInvalidModule)
	}

	return Module{Name: name, URI: strings.TrimRight(u.String(), "/")}, nil
}

// Endpoint is the JSON-RPC address of the module.
func (m Module) Endpoint() string {
	return m.URI + "/" + url.PathEscape(m.Name) + "/rpc/"
}
