package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formbridge/internal/form/models"
	"formbridge/pkg/platform/sentinel"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL)), srv
}

func TestTableFieldsFiltersAndMaps(t *testing.T) {
	client, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/bases/appBase/tables", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tables": []map[string]any{
				{
					"id":   "tblMain",
					"name": "Main",
					"fields": []map[string]any{
						{"id": "fld1", "name": "Name", "type": "singleLineText"},
						{"id": "fld2", "name": "Formula", "type": "formula"},
						{
							"id": "fld3", "name": "Color", "type": "singleSelect",
							"options": map[string]any{
								"choices": []map[string]any{{"name": "red"}, {"name": "blue"}},
							},
						},
					},
				},
			},
		})
	})

	fields, err := client.TableFields(context.Background(), "tok", "appBase", "tblMain")
	require.NoError(t, err)
	require.Len(t, fields, 2, "unsupported types are filtered out")

	assert.Equal(t, "fld1", fields[0].ID)
	assert.Equal(t, models.TypeText, fields[0].MappedType)
	assert.Empty(t, fields[0].Options)

	assert.Equal(t, models.TypeSelect, fields[1].MappedType)
	assert.Equal(t, []string{"red", "blue"}, fields[1].Options)
}

func TestTableFieldsUnknownTable(t *testing.T) {
	client, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"tables": []any{}})
	})

	_, err := client.TableFields(context.Background(), "tok", "appBase", "tblMissing")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCreateRecord(t *testing.T) {
	client, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appBase/tblMain", r.URL.Path)

		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada", body.Fields["Name"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "recNew", "fields": body.Fields})
	})

	record, err := client.CreateRecord(context.Background(), "tok", "appBase", "tblMain",
		map[string]any{"Name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", record.ID)
}

func TestProviderErrorsCarryStatus(t *testing.T) {
	client, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"INVALID_VALUE"}}`))
	})

	_, err := client.CreateRecord(context.Background(), "tok", "appBase", "tblMain", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}

func TestNotFoundTranslatesToSentinel(t *testing.T) {
	client, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetRecord(context.Background(), "tok", "appBase", "tblMain", "recGone")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestOAuthExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
		})
	}))
	t.Cleanup(srv.Close)

	oauth := NewOAuth("client-id", "client-secret", "http://localhost/callback",
		WithTokenURL(srv.URL))

	token, err := oauth.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, 3600, token.ExpiresIn)
}

func TestAuthorizationURL(t *testing.T) {
	oauth := NewOAuth("client-id", "secret", "http://localhost/callback")
	u := oauth.AuthorizationURL("state123")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state123")
	assert.Contains(t, u, "response_type=code")
}
