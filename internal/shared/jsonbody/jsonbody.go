// Package jsonbody is a gin binding that accepts exactly one JSON value.
package jsonbody

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin/binding"
)

var errTrailingData = errors.New("unexpected data after top-level value")

// Binding is used with c.ShouldBindWith. Struct validation is left to the
// domain models, so it only decodes.
var Binding binding.BindingBody = strictJSON{}

type strictJSON struct{}

func (strictJSON) Name() string { return "json" }

func (strictJSON) Bind(req *http.Request, obj any) error {
	if req == nil || req.Body == nil {
		return errors.New("invalid request")
	}
	return decode(req.Body, obj)
}

func (strictJSON) BindBody(body []byte, obj any) error {
	return decode(bytes.NewReader(body), obj)
}

func decode(r io.Reader, obj any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(obj); err != nil {
		return err
	}

	if dec.More() {
		return errTrailingData
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return errTrailingData
		}
		return fmt.Errorf("%w: %v", errTrailingData, err)
	}
	return nil
}
