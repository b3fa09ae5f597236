// Package middleware provides gorilla/mux middlewares for servers that
// expose typed views and their documentation.
//
//	router := mux.NewRouter()
//	router.Use(
//	    middleware.RequestIDMiddleware(middleware.RequestIDConfig{}),
//	    middleware.RecoveryMiddleware(middleware.RecoveryConfig{Logger: logger}),
//	    middleware.AccessLogMiddleware(middleware.AccessLogConfig{Logger: logger}),
//	)
//
// CORSMiddleware needs the router to discover the allowed methods:
//
//	cors, err := middleware.CORSMiddleware(router, middleware.CORSConfig{
//	    AllowedOrigins: []string{"https://*.example.com"},
//	})
package middleware
