package view

import (
	"io"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/vitalvas/typedview/auth"
	"github.com/vitalvas/typedview/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FieldError describes one request value that failed binding.
type FieldError struct {
	In   string   `json:"in"`
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type errorBody struct {
	Error string `json:"error"`
}

// HTTPError is an error a handler returns to answer with a specific status.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Error returns an HTTPError. An empty message defaults to the status text.
func Error(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *Endpoint) serve(w http.ResponseWriter, r *http.Request, logger log.Logger) {
	if e.sigErr != nil {
		level.Error(logger).Log("msg", "invalid endpoint signature", "method", e.method, "path", r.URL.Path, "err", e.sigErr)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}

	ctx := r.Context()
	if e.opts.Auth != nil && e.opts.Auth.Enabled {
		claims, err := e.opts.Auth.Verify(r)
		if err != nil {
			level.Debug(logger).Log("msg", "authentication failed", "path", r.URL.Path, "err", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: http.StatusText(http.StatusUnauthorized)})
			return
		}
		ctx = auth.WithClaims(ctx, claims)
	}

	in := reflect.New(e.in)
	if errs := e.bind(r, in.Elem()); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	out, err := e.handler(ctx, in)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			writeJSON(w, httpErr.Status, errorBody{Error: httpErr.Message})
			return
		}
		level.Error(logger).Log("msg", "handler failed", "method", e.method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}

	switch reply := out.(type) {
	case *Reply:
		if reply == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeReply(w, reply)
	case Reply:
		writeReply(w, &reply)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// bind fills the input struct from the request and collects every failure.
func (e *Endpoint) bind(r *http.Request, in reflect.Value) []FieldError {
	var errs []FieldError

	vars := mux.Vars(r)
	for _, arg := range e.sig.Path {
		raw, ok := vars[arg.Name]
		if err := bindText(in.FieldByIndex(arg.index), arg, []string{raw}, ok); err != nil {
			errs = append(errs, *err)
		}
	}

	query := r.URL.Query()
	for _, arg := range e.sig.Query {
		values, ok := query[arg.Name]
		if err := bindText(in.FieldByIndex(arg.index), arg, values, ok); err != nil {
			errs = append(errs, *err)
		}
	}

	for _, arg := range e.sig.Header {
		values := r.Header.Values(arg.Name)
		if err := bindText(in.FieldByIndex(arg.index), arg, values, len(values) > 0); err != nil {
			errs = append(errs, *err)
		}
	}

	if len(e.sig.Body) > 0 {
		errs = append(errs, e.bindBody(r, in)...)
	}

	return errs
}

func (e *Endpoint) bindBody(r *http.Request, in reflect.Value) []FieldError {
	var data []byte
	if r.Body != nil {
		var err error
		if data, err = io.ReadAll(r.Body); err != nil {
			return []FieldError{{In: InBody, Loc: []string{}, Msg: err.Error(), Type: "value_error.body"}}
		}
	}

	var errs []FieldError
	for _, arg := range e.sig.Body {
		field := in.FieldByIndex(arg.index)
		if len(data) == 0 {
			if field.Kind() != reflect.Pointer {
				errs = append(errs, FieldError{In: InBody, Loc: []string{arg.Name}, Msg: "field required", Type: "value_error.missing"})
			}
			continue
		}

		target := reflect.New(field.Type())
		if err := json.Unmarshal(data, target.Interface()); err != nil {
			errs = append(errs, FieldError{In: InBody, Loc: []string{arg.Name}, Msg: err.Error(), Type: "value_error.json"})
			continue
		}
		field.Set(target.Elem())
	}

	return errs
}

// bindText parses textual values into field. Slices take every value;
// other kinds take the first.
func bindText(field reflect.Value, arg Arg, values []string, present bool) *FieldError {
	if !present {
		switch {
		case arg.HasDefault:
			if err := schema.SetValue(field, arg.DefaultText); err != nil {
				return &FieldError{In: arg.In, Loc: []string{arg.Name}, Msg: err.Error(), Type: "value_error.default"}
			}
		case arg.Type.IsOptional():
		default:
			return &FieldError{In: arg.In, Loc: []string{arg.Name}, Msg: "field required", Type: "value_error.missing"}
		}
		return nil
	}

	if ferr := checkEnum(arg, values); ferr != nil {
		return ferr
	}

	target := field
	if target.Kind() == reflect.Pointer {
		target = reflect.New(field.Type().Elem()).Elem()
	}

	if target.Kind() == reflect.Slice && target.Type().Elem().Kind() != reflect.Uint8 {
		items := reflect.MakeSlice(target.Type(), 0, len(values))
		for _, v := range values {
			item := reflect.New(target.Type().Elem()).Elem()
			if err := schema.SetValue(item, v); err != nil {
				return &FieldError{In: arg.In, Loc: []string{arg.Name}, Msg: err.Error(), Type: "type_error"}
			}
			items = reflect.Append(items, item)
		}
		target.Set(items)
	} else {
		var v string
		if len(values) > 0 {
			v = values[0]
		}
		if err := schema.SetValue(target, v); err != nil {
			return &FieldError{In: arg.In, Loc: []string{arg.Name}, Msg: err.Error(), Type: "type_error"}
		}
	}

	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(target)
		field.Set(ptr)
	}

	return nil
}

// checkEnum rejects values outside the enum declared on arg. Values are
// compared in their textual form.
func checkEnum(arg Arg, values []string) *FieldError {
	if len(arg.Enum) == 0 {
		return nil
	}

	for _, v := range values {
		if slices.Contains(arg.Enum, v) {
			continue
		}

		permitted := make([]string, len(arg.Enum))
		for i, e := range arg.Enum {
			permitted[i] = "'" + e + "'"
		}
		return &FieldError{
			In:   arg.In,
			Loc:  []string{arg.Name},
			Msg:  "value is not a valid enumeration member; permitted: " + strings.Join(permitted, ", "),
			Type: "type_error.enum",
		}
	}

	return nil
}

func writeReply(w http.ResponseWriter, reply *Reply) {
	for _, c := range reply.Cookies {
		http.SetCookie(w, c)
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	if reply.Body == nil {
		w.WriteHeader(status)
		return
	}

	writeJSON(w, status, reply.Body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
