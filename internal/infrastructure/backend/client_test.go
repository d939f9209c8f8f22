package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
	"github.com/soremed/portal/internal/infrastructure/db/memory"
)

type recorded struct {
	method        string
	path          string
	query         string
	authorization string
	contentType   string
	body          []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	handler  http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		method:        r.Method,
		path:          r.URL.Path,
		query:         r.URL.RawQuery,
		authorization: r.Header.Get("Authorization"),
		contentType:   r.Header.Get("Content-Type"),
		body:          body,
	})
	f.mu.Unlock()
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	f.handler(w, r)
}

func (f *fakeBackend) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, h http.HandlerFunc, creds ports.CredentialStore) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{handler: h}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		BaseURL:     srv.URL + "/api",
		Timeout:     2 * time.Second,
		Credentials: creds,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)
	return c, fb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestClient_AttachesStoredCredential(t *testing.T) {
	creds := memory.NewCredentialStore()
	cred := domain.BasicCredential("pharma1", "secret0")
	require.NoError(t, creds.Save(context.Background(), "sess-1", cred, 0))

	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Order{{ID: 1, Status: domain.OrderInProgress}})
	}, creds)

	orders, err := c.ListOrders(domain.WithSessionKey(context.Background(), "sess-1"))
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := fb.last()
	assert.Equal(t, "/api/orders", got.path)
	assert.Equal(t, string(cred), got.authorization)
}

func TestClient_MissingCredentialIsAnonymous(t *testing.T) {
	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.News{})
	}, memory.NewCredentialStore())

	_, err := c.ListNews(domain.WithSessionKey(context.Background(), "nobody"))
	require.NoError(t, err)
	assert.Empty(t, fb.last().authorization)

	_, err = c.ListNews(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fb.last().authorization)
}

func TestClient_PinnedCredentialWins(t *testing.T) {
	creds := memory.NewCredentialStore()
	_ = creds.Save(context.Background(), "sess-1", domain.BasicCredential("stored", "x"), 0)

	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.User{ID: 3, Username: "pinned", Role: domain.RoleAdmin})
	}, creds)

	ctx := domain.WithSessionKey(context.Background(), "sess-1")
	ctx = domain.WithCredential(ctx, domain.BearerCredential("tok"))
	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pinned", u.Username)
	assert.Equal(t, "Bearer tok", fb.last().authorization)
}

func TestClient_RegisterIsAlwaysAnonymous(t *testing.T) {
	creds := memory.NewCredentialStore()
	_ = creds.Save(context.Background(), "sess-1", domain.BasicCredential("admin", "x"), 0)

	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}, creds)

	err := c.Register(domain.WithSessionKey(context.Background(), "sess-1"), domain.Registration{Username: "pharma2", Password: "pw"})
	require.NoError(t, err)

	got := fb.last()
	assert.Equal(t, "/api/users/register", got.path)
	assert.Empty(t, got.authorization)
	assert.Equal(t, "application/json", got.contentType)
}

func TestClient_JSONBodyShaping(t *testing.T) {
	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.CreatedOrder{ID: 42})
	}, nil)

	items := []domain.OrderItem{{MedicationID: 5, Quantity: 2, Price: 12.5}}
	created, err := c.CreateOrder(context.Background(), 9, items)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)

	got := fb.last()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "userId=9", got.query)
	assert.Equal(t, "application/json", got.contentType)
	assert.JSONEq(t, `[{"medicationId":5,"quantity":2,"price":12.5}]`, string(got.body))
}

func TestClient_MultipartBodyShaping(t *testing.T) {
	var title, filename, fileContent string
	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		title = r.FormValue("title")
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		filename = hdr.Filename
		b, _ := io.ReadAll(f)
		fileContent = string(b)
		writeJSON(w, http.StatusCreated, domain.News{ID: 11, Title: title})
	}, nil)

	n, err := c.CreateNews(context.Background(), domain.News{Title: "Rupture Doliprane"},
		&ports.NewsImage{Filename: "stock.png", Content: strings.NewReader("PNGDATA")})
	require.NoError(t, err)
	assert.Equal(t, int64(11), n.ID)

	got := fb.last()
	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data; boundary="), got.contentType)
	assert.Equal(t, "Rupture Doliprane", title)
	assert.Equal(t, "stock.png", filename)
	assert.Equal(t, "PNGDATA", fileContent)
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrConflict},
		{http.StatusBadRequest, domain.ErrBadRequest},
		{http.StatusInternalServerError, domain.ErrBackendUnavailable},
	}
	for _, tc := range cases {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}, nil)

		_, err := c.GetOrder(context.Background(), 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, tc.status, se.Code)
		assert.Equal(t, "/orders/{id}", se.Route)
	}
}

func TestClient_MeRejectsEmptyUser(t *testing.T) {
	for _, body := range []string{"", "{}"} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, body)
		}, nil)

		u, err := c.Me(context.Background())
		assert.Nil(t, u, "body %q", body)
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable, "body %q", body)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.ListNews(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestClient_LoginResponseShapes(t *testing.T) {
	bodies := map[string]string{
		"bare":   `{"id":4,"username":"pharma1","role":"CLIENT"}`,
		"nested": `{"token":"jwt-abc","user":{"id":4,"username":"pharma1","role":"CLIENT"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, body)
			}, nil)

			res, err := c.Login(context.Background(), "pharma1", "secret0")
			require.NoError(t, err)
			require.NotNil(t, res.User)
			assert.Equal(t, "pharma1", res.User.Username)
			assert.Equal(t, domain.RoleClient, res.User.Role)
			if name == "nested" {
				assert.Equal(t, "jwt-abc", res.Token)
			} else {
				assert.Empty(t, res.Token)
			}
			assert.JSONEq(t, `{"username":"pharma1","password":"secret0"}`, string(fb.last().body))
		})
	}
}

func TestClient_ExportOrdersStreams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "id,status\n1,PENDING\n")
	}, nil)

	rc, ct, err := c.ExportOrders(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)

	assert.Equal(t, "text/csv", ct)
	assert.Equal(t, "id,status\n1,PENDING\n", string(b))
}

func TestClient_ObserverSeesEveryCall(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}}
	srv := httptest.NewServer(fb)
	defer srv.Close()

	var routes []string
	var statuses []int
	c, err := New(Options{
		BaseURL: srv.URL,
		Logger:  zerolog.Nop(),
		Observer: func(method, route string, status int, _ time.Duration) {
			routes = append(routes, method+" "+route)
			statuses = append(statuses, status)
		},
	})
	require.NoError(t, err)

	require.NoError(t, c.DeleteUser(context.Background(), 5))
	require.NoError(t, c.ChangeUserRole(context.Background(), 5, domain.RoleAdmin))

	assert.Equal(t, []string{"DELETE /admin/users/{id}", "PUT /admin/users/{id}/role"}, routes)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent}, statuses)
	assert.Equal(t, "newRole=ADMIN", fb.last().query)
}
