package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/cryptochain/foundation/web"
)

func Test_App(t *testing.T) {
	shutdown := make(chan os.Signal, 1)

	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(shutdown, mw("app"))

	app.Handle(http.MethodPost, "v1", "/echo/:name", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var body struct {
			Amount uint64 `json:"amount"`
		}
		if err := web.Decode(r, &body); err != nil {
			return err
		}

		resp := struct {
			Name    string `json:"name"`
			Amount  uint64 `json:"amount"`
			TraceID string `json:"trace_id"`
		}{
			Name:    web.Param(r, "name"),
			Amount:  body.Amount,
			TraceID: web.GetTraceID(ctx),
		}

		return web.Respond(ctx, w, resp, http.StatusCreated)
	}, mw("route"))

	app.Handle(http.MethodGet, "v1", "/down", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/echo/bill", strings.NewReader(`{"amount":10}`))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("Should receive a 201 status code: got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), `"name":"bill","amount":10`) {
		t.Fatalf("Should receive the param and the decoded body: got %s", w.Body.String())
	}

	if strings.Contains(w.Body.String(), `"trace_id":""`) {
		t.Fatalf("Should set a trace id for the request.")
	}

	if len(order) != 2 || order[0] != "app" || order[1] != "route" {
		t.Fatalf("Should run the app middleware before the route middleware: got %v", order)
	}

	r = httptest.NewRequest(http.MethodPost, "/v1/echo/bill", strings.NewReader(`{"unknown":10}`))
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)

	r = httptest.NewRequest(http.MethodGet, "/v1/down", nil)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)

	select {
	case <-shutdown:
	default:
		t.Fatalf("Should signal a shutdown on a shutdown error.")
	}
}
