// Package docs serves the API route catalog.
package docs

import (
	"net/http"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/gorilla/mux"
)

// Meta is what the router knows about a named route beyond its path.
type Meta struct {
	Description string
	// Permission is empty for routes that only need a signed-in user or none.
	Permission string
	Auth       bool
}

type Route struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Auth        bool   `json:"auth_required"`
	Permission  string `json:"permission,omitempty"`
	Description string `json:"description"`
}

// Build walks router and returns one entry per method and path template,
// sorted by path then method. Routes without a name get no metadata.
func Build(router *mux.Router, meta map[string]Meta) ([]Route, error) {
	var routes []Route
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			// subrouter prefixes without a handler
			return nil
		}
		if route.GetHandler() == nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"ANY"}
		}

		m := meta[route.GetName()]
		for _, method := range methods {
			routes = append(routes, Route{
				Name:        route.GetName(),
				Method:      method,
				Path:        path,
				Auth:        m.Auth || m.Permission != "",
				Permission:  m.Permission,
				Description: m.Description,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes, nil
}

// Handler serves routes as JSON. ?prefix= narrows the list.
func Handler(routes []Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := routes
		if prefix := r.URL.Query().Get("prefix"); prefix != "" {
			out = make([]Route, 0, len(routes))
			for _, rt := range routes {
				if strings.HasPrefix(rt.Path, prefix) {
					out = append(out, rt)
				}
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"routes": out,
			"count":  len(out),
		})
	}
}
