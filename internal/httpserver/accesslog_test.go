package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/andrebq/shop/internal/logutil"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
)

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	handler := AccessLog(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := logutil.GetOrDefault(r.Context())
		reqLog.Info().Msg("inside handler")
		Error(w, http.StatusNotFound, "nothing here")
	}))

	apitest.Handler(handler).
		Get("/missing").
		Expect(t).
		Status(http.StatusNotFound).
		Header("Content-Type", "application/json; charset=utf-8").
		Assert(jsonpath.Equal("$.error", "nothing here")).
		End()

	dec := json.NewDecoder(&buf)
	var inside, access map[string]interface{}
	require.NoError(t, dec.Decode(&inside))
	require.NoError(t, dec.Decode(&access))
	require.Equal(t, "/missing", inside["http.path"], "handlers should get the request logger")
	require.Equal(t, "warn", access["level"])
	require.Equal(t, float64(http.StatusNotFound), access["http.status"])
	require.Equal(t, "GET", access["http.method"])
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		if err := DecodeJSON(w, r, &p); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		JSON(w, http.StatusOK, p)
	})

	apitest.Handler(handler).Post("/").JSON(`{"name":"bob"}`).Expect(t).Status(http.StatusOK).Body(`{"name":"bob"}`).End()
	apitest.Handler(handler).Post("/").Expect(t).Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "request body is empty")).End()
	apitest.Handler(handler).Post("/").Body(`{"name":`).Expect(t).Status(http.StatusBadRequest).End()
}
