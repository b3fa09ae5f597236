package generator

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/go-kit/log"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/typedview/auth"
	"github.com/vitalvas/typedview/oas"
	"github.com/vitalvas/typedview/typing"
	"github.com/vitalvas/typedview/view"
)

type Owner struct {
	Name string `json:"name"`
}

type Pet struct {
	Name  string `json:"name"`
	Owner Owner  `json:"owner"`
}

type Toy struct {
	Label string `json:"label"`
	Owner Owner  `json:"owner"`
}

type articleQuery struct {
	WithComments bool `query:"with_comments"`
	Age          *int `query:"age"`
	NbItems      int  `query:"nb_items" default:"7"`
}

type petPath struct {
	ID    int    `path:"id"`
	Token string `header:"X-Token"`
	Full  *bool  `query:"full"`
}

type createPet struct {
	Pet Pet `body:"pet"`
}

type createToy struct {
	Toy Toy `body:"toy"`
}

func noop[In, Out any](context.Context, *In) (Out, error) {
	var out Out
	return out, nil
}

func generate(t *testing.T, router *mux.Router) *oas.Spec {
	t.Helper()
	spec, err := Generate(Config{}, router)
	require.NoError(t, err)
	return spec
}

func TestGenerateDocumentDefaults(t *testing.T) {
	spec := generate(t, mux.NewRouter())

	assert.Equal(t, oas.Node{
		"openapi": "3.0.0",
		"info":    oas.Node{"title": "API", "version": "1.0.0"},
		"paths":   oas.Node{},
		"components": oas.Node{
			"schemas":         oas.Node{},
			"securitySchemes": oas.Node{},
		},
	}, spec.Node())
}

func TestGenerateInfoAndServers(t *testing.T) {
	spec, err := Generate(Config{
		Title:       "Pet Store",
		Version:     "2.1.0",
		Description: "Pets",
		Servers: []Server{
			{URL: "https://api.example.com", Description: "production"},
			{URL: "http://localhost:8080"},
		},
	}, mux.NewRouter())
	require.NoError(t, err)

	assert.Equal(t, "Pet Store", spec.Info().Title())
	assert.Equal(t, "2.1.0", spec.Info().Version())
	assert.Equal(t, "Pets", spec.Info().Description())

	require.Equal(t, 2, spec.Servers().Len())
	second, err := spec.Servers().At(1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", second.URL())
}

func TestGenerateQueryParameters(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/articles", view.New(view.Handle(http.MethodGet, noop[articleQuery, []string]))).Methods(http.MethodGet)

	spec := generate(t, router)
	op := spec.Paths().Get("/articles").Get()

	assert.Equal(t, []any{
		oas.Node{
			"in":       "query",
			"name":     "with_comments",
			"required": true,
			"schema":   oas.Node{"title": "with_comments", "type": "boolean"},
		},
		oas.Node{
			"in":       "query",
			"name":     "age",
			"required": false,
			"schema":   oas.Node{"title": "age", "type": "integer"},
		},
		oas.Node{
			"in":       "query",
			"name":     "nb_items",
			"required": true,
			"schema":   oas.Node{"title": "nb_items", "type": "integer", "default": 7},
		},
	}, op.Node()["parameters"])

	resp, err := op.Responses().At(http.StatusOK)
	require.NoError(t, err)
	assert.Equal(t, oas.Node{
		"application/json": oas.Node{"schema": oas.Node{"type": "array", "items": oas.Node{"type": "string"}}},
	}, resp.Content())
}

type signatureHeaders struct {
	Format string `header:"format" default:"UMT" openapi:"enum=UMT|MGRS,description=Coordinate format"`
}

func TestGenerateParameterTags(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/signature", view.New(view.Handle(http.MethodGet, noop[signatureHeaders, *view.Reply])))

	op := generate(t, router).Paths().Get("/signature").Get()

	assert.Equal(t, []any{
		oas.Node{
			"in":          "header",
			"name":        "format",
			"required":    true,
			"description": "Coordinate format",
			"schema": oas.Node{
				"title":       "format",
				"type":        "string",
				"default":     "UMT",
				"enum":        []any{"UMT", "MGRS"},
				"description": "Coordinate format",
			},
		},
	}, op.Node()["parameters"])
}

func TestGenerateOperationWithoutParameters(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(
		view.Handle(http.MethodGet, noop[struct{}, []Pet]),
		view.Handle(http.MethodPost, noop[createPet, Pet]),
	))

	item := generate(t, router).Paths().Get("/pets")
	assert.NotContains(t, item.Get().Node(), "parameters")
	assert.NotContains(t, item.Post().Node(), "parameters")
}

func TestGenerateParameterOrder(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets/{id:[0-9]+}", view.New(view.Handle(http.MethodGet, noop[petPath, *view.Reply])))

	spec := generate(t, router)
	require.Contains(t, spec.Paths().Node(), "/pets/{id}")

	params := spec.Paths().Get("/pets/{id}").Get().Parameters()
	require.Equal(t, 3, params.Len())

	var got [][2]string
	for i := range params.Len() {
		p, err := params.At(i)
		require.NoError(t, err)
		got = append(got, [2]string{p.In(), p.Name()})
	}
	assert.Equal(t, [][2]string{{"path", "id"}, {"query", "full"}, {"header", "X-Token"}}, got)
}

func TestGenerateStatusTaggedResponses(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(
		view.Handle(http.MethodPost, noop[createPet, *view.Reply],
			view.Doc(`Create a pet.

    Status Codes:
        201: The pet was created
        404: Owner not found
`),
			view.Returns(typing.Union(
				typing.Status(http.StatusCreated, typing.Of[Pet]()),
				typing.Status(http.StatusNotFound, nil),
			)),
		),
	))

	spec := generate(t, router)
	op := spec.Paths().Get("/pets").Post()

	assert.Equal(t, "Create a pet.", op.Description())
	require.Equal(t, 2, op.Responses().Len())

	created, err := op.Responses().At(http.StatusCreated)
	require.NoError(t, err)
	assert.Equal(t, "The pet was created", created.Description())

	petSchema := oas.Node{
		"title": "Pet",
		"type":  "object",
		"properties": oas.Node{
			"name":  oas.Node{"title": "Name", "type": "string"},
			"owner": oas.Node{"$ref": "#/components/schemas/Owner"},
		},
		"required": []string{"name", "owner"},
	}
	assert.Equal(t, oas.Node{"application/json": oas.Node{"schema": petSchema}}, created.Content())

	notFound, err := op.Responses().At(http.StatusNotFound)
	require.NoError(t, err)
	assert.Equal(t, oas.Node{}, notFound.Content())
	assert.Equal(t, "Owner not found", notFound.Description())

	assert.Contains(t, spec.Components().Schemas(), "Owner")
}

func TestGenerateListOfModelResponse(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(view.Handle(http.MethodGet, noop[struct{}, []Pet])))

	spec := generate(t, router)
	resp, err := spec.Paths().Get("/pets").Get().Responses().At(http.StatusOK)
	require.NoError(t, err)

	s, ok := oas.AsNode(resp.Content()["application/json"].(oas.Node)["schema"])
	require.True(t, ok)
	assert.Equal(t, "array", s["type"])
	items, ok := oas.AsNode(s["items"])
	require.True(t, ok)
	assert.Equal(t, "Pet", items["title"])
	assert.Contains(t, spec.Components().Schemas(), "Owner")
}

func TestGenerateSharedSubSchema(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(view.Handle(http.MethodPost, noop[createPet, *view.Reply])))
	router.Handle("/toys", view.New(view.Handle(http.MethodPost, noop[createToy, *view.Reply])))

	spec := generate(t, router)

	schemas := spec.Components().Schemas()
	assert.Equal(t, oas.Node{
		"Owner": oas.Node{
			"title":      "Owner",
			"type":       "object",
			"properties": oas.Node{"name": oas.Node{"title": "Name", "type": "string"}},
			"required":   []string{"name"},
		},
	}, schemas)

	for _, path := range []string{"/pets", "/toys"} {
		content := spec.Paths().Get(path).Post().RequestBody().Content()
		s, ok := oas.AsNode(content["application/json"].(oas.Node)["schema"])
		require.True(t, ok, path)
		assert.NotContains(t, s, "definitions")
		props, ok := oas.AsNode(s["properties"])
		require.True(t, ok, path)
		assert.Equal(t, oas.Node{"$ref": "#/components/schemas/Owner"}, props["owner"], path)
	}
}

func TestGenerateWildcardRoute(t *testing.T) {
	pets := view.New(
		view.Handle(http.MethodGet, noop[struct{}, []Pet]),
		view.Handle(http.MethodPost, noop[createPet, Pet]),
	)

	t.Run("wildcard", func(t *testing.T) {
		router := mux.NewRouter()
		router.Handle("/pets", pets)

		item := generate(t, router).Paths().Get("/pets")
		assert.Contains(t, item.Node(), "get")
		assert.Contains(t, item.Node(), "post")
	})

	t.Run("method bound", func(t *testing.T) {
		router := mux.NewRouter()
		router.Handle("/pets", pets).Methods(http.MethodPost)

		item := generate(t, router).Paths().Get("/pets")
		assert.NotContains(t, item.Node(), "get")
		assert.Contains(t, item.Node(), "post")
	})

	t.Run("method without endpoint", func(t *testing.T) {
		router := mux.NewRouter()
		router.Handle("/pets", pets).Methods(http.MethodDelete)

		assert.Empty(t, generate(t, router).Paths().Node())
	})
}

func TestGenerateSkipsPlainHandlers(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/pets", view.New(view.Handle(http.MethodGet, noop[struct{}, []Pet])))

	spec := generate(t, router)
	assert.NotContains(t, spec.Paths().Node(), "/health")
	assert.Contains(t, spec.Paths().Node(), "/api/pets")
}

func TestGenerateMultipleRouters(t *testing.T) {
	first := mux.NewRouter()
	first.Handle("/pets", view.New(view.Handle(http.MethodGet, noop[struct{}, []Pet])))
	second := mux.NewRouter()
	second.Handle("/toys", view.New(view.Handle(http.MethodGet, noop[struct{}, []Toy])))

	spec, err := Generate(Config{}, first, nil, second)
	require.NoError(t, err)
	assert.Len(t, spec.Paths().Node(), 2)
}

func TestGenerateTagsAndOperationID(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(
		view.Handle(http.MethodGet, noop[struct{}, []Pet], view.Tags("pets"), view.OperationID("list_pets"),
			view.Doc("List pets.\n\nTags: ignored")),
		view.Handle(http.MethodPost, noop[createPet, Pet], view.Doc("Create.\n\nTags: pets, admin")),
		view.Handle(http.MethodPut, noop[createPet, Pet]),
	))

	item := generate(t, router).Paths().Get("/pets")

	assert.Equal(t, []string{"pets"}, item.Get().Tags())
	assert.Equal(t, "list_pets", item.Get().OperationID())
	assert.Equal(t, "List pets.", item.Get().Description())
	assert.Equal(t, []string{"pets", "admin"}, item.Post().Tags())
	assert.Nil(t, item.Put().Tags())
	assert.NotContains(t, item.Put().Node(), "operationId")
	assert.NotContains(t, item.Put().Node(), "security")
}

func TestGenerateSecurity(t *testing.T) {
	cfg := auth.Config{Enabled: true, CookieName: "session"}

	router := mux.NewRouter()
	router.Handle("/me", view.New(view.Handle(http.MethodGet, noop[struct{}, Owner], view.Auth(cfg))))
	router.Handle("/pets", view.New(
		view.Handle(http.MethodGet, noop[struct{}, []Pet], view.Auth(cfg)),
		view.Handle(http.MethodPost, noop[createPet, Pet], view.Auth(auth.Config{})),
	))

	spec := generate(t, router)

	assert.Equal(t, oas.Node{
		"bearerAuth": oas.Node{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
		"cookieAuth": oas.Node{"type": "apiKey", "in": "cookie", "name": "session"},
	}, spec.Components().SecuritySchemes())

	for _, op := range []*oas.Operation{spec.Paths().Get("/me").Get(), spec.Paths().Get("/pets").Get()} {
		assert.Equal(t, []string{"bearerAuth", "cookieAuth"}, op.Security().Names())
		assert.Equal(t, []any{
			oas.Node{"bearerAuth": []string{}},
			oas.Node{"cookieAuth": []string{}},
		}, op.Node()["security"])
	}

	assert.NotContains(t, spec.Paths().Get("/pets").Post().Node(), "security")
}

func TestGenerateAuthProviderCookie(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/login", view.New(view.Handle(http.MethodPost, noop[struct{}, *view.Reply],
		view.AuthProvider(auth.ProviderConfig{StatusCode: http.StatusOK, CookieExample: "access_token=abc; Path=/"}),
		view.Returns(typing.Union(
			typing.Status(http.StatusOK, nil),
			typing.Status(http.StatusUnauthorized, nil),
		)),
	)))

	responses := generate(t, router).Paths().Get("/login").Post().Node()["responses"].(oas.Node)

	assert.Equal(t, oas.Node{
		"description": "",
		"content":     oas.Node{},
		"headers": oas.Node{
			"Set-Cookie": oas.Node{
				"schema": oas.Node{"type": "string", "example": "access_token=abc; Path=/"},
			},
		},
	}, responses["200"])
	assert.NotContains(t, responses["401"], "headers")
}

func TestGenerateInvalidStatusCode(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(view.Handle(http.MethodGet, noop[struct{}, *view.Reply],
		view.Returns(typing.Union(typing.Status(http.StatusOK, nil), typing.Status(600, nil))),
	)))

	spec, err := Generate(Config{}, router)
	require.ErrorIs(t, err, oas.ErrInvalidStatusCode)
	assert.Nil(t, spec)
	assert.Contains(t, err.Error(), "GET /pets")
}

func TestGenerateInvalidSignature(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/pets", view.New(view.Handle(http.MethodPost, noop[struct {
		N int `body:"n"`
	}, Pet])))

	_, err := Generate(Config{}, router)
	require.ErrorIs(t, err, view.ErrInvalidSignature)
}

func TestGenerateUnrecognizedReturnType(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)

	router := mux.NewRouter()
	router.Handle("/pets", view.New(view.Handle(http.MethodGet, noop[struct{}, *view.Reply],
		view.Returns(typing.Of[Pet]()),
	)))

	spec, err := Generate(Config{Logger: logger}, router)
	require.NoError(t, err)

	assert.NotContains(t, spec.Paths().Get("/pets").Get().Node(), "responses")
	assert.Contains(t, buf.String(), "return type has no status code")
}

func TestGenerateUnionBody(t *testing.T) {
	tests := []struct {
		name    string
		returns *typing.Type
		want    oas.Node
		logged  string
	}{
		{
			name: "union of status tags",
			returns: typing.Status(http.StatusOK, typing.Union(
				typing.Status(http.StatusCreated, nil),
				typing.Status(http.StatusNotFound, nil),
			)),
			want:   oas.Node{},
			logged: "response body union has members without a schema",
		},
		{
			name:    "union with unknown member",
			returns: typing.Status(http.StatusOK, typing.Union(typing.Of[int](), typing.Of[chan int]())),
			want:    oas.Node{},
			logged:  "response body union has members without a schema",
		},
		{
			name:    "union of scalars",
			returns: typing.Status(http.StatusOK, typing.Union(typing.Of[int](), typing.Of[string]())),
			want: oas.Node{"anyOf": []any{
				oas.Node{"type": "integer"},
				oas.Node{"type": "string"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewLogfmtLogger(&buf)

			router := mux.NewRouter()
			router.Handle("/x", view.New(view.Handle(http.MethodGet, noop[struct{}, *view.Reply],
				view.Returns(tt.returns),
			)))

			spec, err := Generate(Config{Logger: logger}, router)
			require.NoError(t, err)

			resp, err := spec.Paths().Get("/x").Get().Responses().At(http.StatusOK)
			require.NoError(t, err)
			assert.Equal(t, oas.Node{"application/json": oas.Node{"schema": tt.want}}, resp.Content())
			assert.Contains(t, buf.String(), tt.logged)
		})
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/articles", view.New(view.Handle(http.MethodGet, noop[articleQuery, []Pet])))
	router.Handle("/pets/{id}", view.New(
		view.Handle(http.MethodGet, noop[petPath, Pet], view.Auth(auth.Config{Enabled: true})),
		view.Handle(http.MethodPut, noop[createPet, *view.Reply], view.Returns(typing.Union(
			typing.Status(http.StatusOK, typing.Of[Pet]()),
			typing.Status(http.StatusConflict, typing.Of[[]Toy]()),
		))),
	))

	first := generate(t, router)
	second := generate(t, router)

	if diff := cmp.Diff(first.Node(), second.Node()); diff != "" {
		t.Errorf("documents differ (-first +second):\n%s", diff)
	}
}

func TestPathTemplate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/pets", "/pets"},
		{"/pets/{id}", "/pets/{id}"},
		{"/pets/{id:[0-9]+}", "/pets/{id}"},
		{"/pets/{id:[0-9]{3}}/toys/{name}", "/pets/{id}/toys/{name}"},
		{"/broken/{id", "/broken/{id"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PathTemplate(tt.in))
		})
	}
}
