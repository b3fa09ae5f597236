package oasui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/typedview/generator"
	"github.com/vitalvas/typedview/typing"
	"github.com/vitalvas/typedview/view"
)

type Pet struct {
	Name string `json:"name"`
}

func listPets(context.Context, *struct{}) ([]Pet, error) {
	return []Pet{{Name: "Rex"}}, nil
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func newApp() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/pets", view.New(view.Handle(http.MethodGet, listPets)))
	return r
}

func TestSpecJSON(t *testing.T) {
	router := newApp()
	reg := prometheus.NewPedanticRegistry()
	Setup(router, Config{Document: generator.Config{Title: "Pet Store"}, Registerer: reg})

	w := serve(router, http.MethodGet, "/oas/spec")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.0", doc["openapi"])
	assert.Equal(t, map[string]any{"title": "Pet Store", "version": "1.0.0"}, doc["info"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, paths, 1)
	assert.Contains(t, paths, "/pets")

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP typedview_oas_generations_total Total number of OpenAPI documents generated, by format and result.
# TYPE typedview_oas_generations_total counter
typedview_oas_generations_total{format="json",result="success"} 1
`), "typedview_oas_generations_total"))
	count, err := testutil.GatherAndCount(reg, "typedview_oas_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSpecYAML(t *testing.T) {
	router := newApp()
	Setup(router, Config{BasePath: "/docs/"})

	w := serve(router, http.MethodGet, "/docs/spec.yaml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.0", doc["openapi"])
	assert.Contains(t, doc["paths"], "/pets")
}

func TestSpecRegeneratedPerRequest(t *testing.T) {
	router := newApp()
	Setup(router, Config{})

	first := serve(router, http.MethodGet, "/oas/spec")
	require.Equal(t, http.StatusOK, first.Code)
	assert.NotContains(t, first.Body.String(), "/toys")

	router.Handle("/toys", view.New(view.Handle(http.MethodGet, listPets)))

	second := serve(router, http.MethodGet, "/oas/spec")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "/toys")
}

func TestSpecSeparateApps(t *testing.T) {
	docs := mux.NewRouter()
	Setup(docs, Config{}, newApp())

	w := serve(docs, http.MethodGet, "/oas/spec")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/pets"`)
}

func TestSpecGenerationFailure(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(view.Handle(http.MethodGet, listPets,
		view.Returns(typing.Status(1000, nil)),
	)))
	reg := prometheus.NewRegistry()
	Setup(router, Config{Registerer: reg})

	w := serve(router, http.MethodGet, "/oas/spec")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = serve(router, http.MethodGet, "/oas/spec.yaml")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP typedview_oas_generations_total Total number of OpenAPI documents generated, by format and result.
# TYPE typedview_oas_generations_total counter
typedview_oas_generations_total{format="json",result="error"} 1
typedview_oas_generations_total{format="yaml",result="error"} 1
`), "typedview_oas_generations_total"))
}

func TestIndexPage(t *testing.T) {
	router := newApp()
	Setup(router, Config{Title: "Pets <docs>"})

	for _, path := range []string{"/oas", "/oas/"} {
		t.Run(path, func(t *testing.T) {
			w := serve(router, http.MethodGet, path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

			body := w.Body.String()
			assert.Contains(t, body, `data-spec-url="/oas/spec"`)
			assert.Contains(t, body, `href="/oas/static/docs.css"`)
			assert.Contains(t, body, `<title>Pets &lt;docs&gt;</title>`)
		})
	}
}

func TestStaticFiles(t *testing.T) {
	router := newApp()
	Setup(router, Config{})

	w := serve(router, http.MethodGet, "/oas/static/docs.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SwaggerUIBundle")

	w = serve(router, http.MethodGet, "/oas/static/missing.js")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer(t *testing.T) {
	router := newApp()
	Setup(router, Config{})

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/oas/spec")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), `{"components":`))

	srv.Client().CloseIdleConnections()
}
