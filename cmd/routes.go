package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireAuth)

	mux := pat.New()

	// Requests
	mux.Get("/users/:uuid/requests", authMiddleware.ThenFunc(app.requestHandler.ListAll))
	mux.Post("/users/:uuid/requests", authMiddleware.ThenFunc(app.requestHandler.Create))
	mux.Get("/users/:uuid/requests/:id", authMiddleware.ThenFunc(app.requestHandler.GetOne))
	mux.Del("/users/:uuid/requests/:id", authMiddleware.ThenFunc(app.requestHandler.Cancel))

	mux.Get("/health", standardMiddleware.ThenFunc(app.healthCheck))

	return mux
}
