package mid_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/cryptochain/business/web/errs"
	"github.com/ardanlabs/cryptochain/business/web/mid"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/web"
	"go.uber.org/zap"
)

func Test_Errors(t *testing.T) {
	log := zap.NewNop().Sugar()

	app := web.NewApp(make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	app.Handle(http.MethodGet, "v1", "/balance", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.Classify(fmt.Errorf("%w: amount 10, balance 5", database.ErrInsufficientBalance))
	})

	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	type table struct {
		name   string
		path   string
		status int
	}

	tt := []table{
		{name: "trusted", path: "/v1/balance", status: http.StatusBadRequest},
		{name: "panic", path: "/v1/panic", status: http.StatusInternalServerError},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tst.path, nil)
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if w.Code != tst.status {
				t.Logf("Test %s:\tgot: %d", tst.name, w.Code)
				t.Logf("Test %s:\texp: %d", tst.name, tst.status)
				t.Fatalf("Test %s:\tShould get back the right status.", tst.name)
			}

			var resp errs.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Fatalf("Test %s:\tShould get back an error response: %v", tst.name, err)
			}

			if w.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Fatalf("Test %s:\tShould set the cors headers.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}
