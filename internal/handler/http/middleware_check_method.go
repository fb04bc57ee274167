// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/go-chi/chi/v5"
)

var probedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// CheckHTTPMethod returns a handler meant for [chi.Mux.MethodNotAllowed].
//
// Chi answers 405 when a path matches a route but the method is not served.
// This handler answers 404 instead, so callers probing with an unsupported
// method learn nothing about the route. The methods the path does serve are
// looked up through [chi.Routes.Match], which also descends into mounted
// sub-routers, and logged at debug level.
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var served []string
		for _, method := range probedMethods {
			if router.Match(chi.NewRouteContext(), method, r.URL.Path) {
				served = append(served, method)
			}
		}

		logger.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Strs("served", served).
			Msg("method is not served on this route")

		w.WriteHeader(http.StatusNotFound)
	}
}
