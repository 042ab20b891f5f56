package jsonbody

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	FirstName *string `json:"firstName"`
}

func TestBind(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "single object", body: `{"firstName":"Émile"}`},
		{name: "trailing whitespace", body: "{\"firstName\":\"Émile\"}\n  "},
		{name: "trailing garbage", body: `{"firstName":"a"} trailing`, wantErr: true},
		{name: "second object", body: `{"firstName":"a"}{"firstName":"b"}`, wantErr: true},
		{name: "truncated", body: `{"firstName":`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "wrong type", body: `{"firstName":12}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/authors", strings.NewReader(tt.body))

			var p payload
			err := Binding.Bind(req, &p)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p.FirstName)
			assert.Equal(t, "Émile", *p.FirstName)
		})
	}
}

func TestBindBody(t *testing.T) {
	var p payload
	assert.Error(t, Binding.BindBody([]byte(`{} []`), &p))
	assert.NoError(t, Binding.BindBody([]byte(`{}`), &p))
}
