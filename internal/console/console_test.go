package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/api/http/client"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/backend"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/config"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/repository/memory"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/testutil"
)

type fixture struct {
	backend   *backend.Backend
	session   *Session
	store     *memory.MarkerStore
	navigator *testutil.Navigator
	registry  *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := backend.New("secret", time.Hour, false, testutil.MakeNoopLogger(), "admin", "store")
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_STORE", config.StoreMemory)
	cfg, err := config.NewConfig()
	require.NoError(t, err)

	f := &fixture{
		backend:   b,
		store:     memory.NewMarkerStore(),
		navigator: &testutil.Navigator{},
		registry:  prometheus.NewRegistry(),
	}
	f.session, err = New(context.Background(), cfg, f.navigator, testutil.MakeNoopLogger(),
		WithStore(f.store),
		WithRegisterer(f.registry))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.session.Close() })

	return f
}

func (f *fixture) login(t *testing.T, realm string, kind model.Kind) {
	t.Helper()
	ctx := context.Background()

	resp, err := f.session.Post(ctx, "/"+realm+"/login", map[string]string{"loginId": "owner", "password": "pw"}, client.WithoutRenewal())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, f.session.Login(ctx, kind, []byte(`{"loginId":"owner"}`)))
}

func (f *fixture) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestSession_ExpiredAccessIsRenewedAndReplayed(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin", model.KindPrimary)
	assert.True(t, f.session.Renewing())

	f.backend.ExpireAccess()

	resp, err := f.session.Get(context.Background(), "/admin/auth")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var principals []map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&principals))
	require.Len(t, principals, 1)
	assert.Equal(t, "admin", principals[0]["realm"])

	assert.Equal(t, 2, f.backend.Hits("GET /admin/auth"))
	assert.Equal(t, 1, f.backend.Hits("POST /admin/refresh"))
	assert.Equal(t, float64(1), f.counter(t, "console_replays_total"))
	assert.Equal(t, float64(1), f.counter(t, "console_renewals_total"))
	assert.Empty(t, f.navigator.Destinations())
}

func TestSession_MultipartReplay(t *testing.T) {
	f := newFixture(t)
	f.login(t, "store", model.KindSecondary)
	f.backend.ExpireAccess()

	form := client.NewForm().
		AddField("name", "espresso").
		AddFile("image", "cup.png", []byte("not really a png")).
		AddJSON("meta", map[string]int{"price": 3})
	encoded, contentType, err := form.Encode()
	require.NoError(t, err)

	resp, err := f.session.PostMultipart(context.Background(), "/store/echo", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var echo struct {
		Method      string `json:"method"`
		ContentType string `json:"contentType"`
		Length      int    `json:"length"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&echo))
	assert.Equal(t, http.MethodPost, echo.Method)
	assert.Equal(t, "multipart/form-data", echo.ContentType)
	assert.Contains(t, contentType, "multipart/form-data")
	assert.Len(t, encoded, echo.Length)

	assert.Equal(t, 2, f.backend.Hits("POST /store/echo"))
	assert.Equal(t, 1, f.backend.Hits("POST /store/refresh"))
	assert.Zero(t, f.backend.Hits("POST /admin/refresh"))
}

func TestSession_ForcedLogoutWhenRefreshRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "admin", model.KindPrimary)

	resp, err := f.session.Post(ctx, "/admin/logout", nil, client.WithoutRenewal())
	require.NoError(t, err)
	resp.Body.Close()

	_, err = f.session.Get(ctx, "/admin/auth")
	require.ErrorIs(t, err, model.ErrRenewalFailed)

	var renewalErr *model.RenewalError
	require.ErrorAs(t, err, &renewalErr)
	assert.Equal(t, http.StatusUnauthorized, renewalErr.Status)
	assert.Equal(t, model.KindPrimary, renewalErr.Kind)

	assert.Equal(t, []string{"/admin/login"}, f.navigator.Destinations())
	assert.Equal(t, model.KindNone, f.session.Kind(ctx))
	assert.False(t, f.session.Renewing())
	assert.Equal(t, 1, f.backend.Hits("GET /admin/auth"))
	assert.Equal(t, float64(1), f.counter(t, "console_forced_logouts_total"))
}

func TestSession_UnauthorizedWithoutPrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.Get(context.Background(), "/admin/auth")
	require.ErrorIs(t, err, model.ErrNoPrincipal)

	assert.Zero(t, f.backend.Hits("POST /admin/refresh"))
	assert.Zero(t, f.backend.Hits("POST /store/refresh"))
	assert.Equal(t, []string{"/admin/login"}, f.navigator.Destinations())
}

func TestSession_LoginSwitchesKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.login(t, "admin", model.KindPrimary)
	assert.Equal(t, model.KindPrimary, f.session.Kind(ctx))

	f.login(t, "store", model.KindSecondary)
	assert.Equal(t, model.KindSecondary, f.session.Kind(ctx))

	_, err := f.store.Load(ctx, "admin")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.ErrorIs(t, f.session.Login(ctx, model.KindNone, nil), model.ErrNoPrincipal)
}

func TestSession_ResumeLogoutClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, model.KindNone, f.session.Resume(ctx))
	assert.False(t, f.session.Renewing())

	require.NoError(t, f.store.Save(ctx, "store", []byte("{}")))
	assert.Equal(t, model.KindSecondary, f.session.Resume(ctx))
	assert.True(t, f.session.Renewing())

	require.NoError(t, f.session.Close())
	assert.False(t, f.session.Renewing())
	assert.Equal(t, model.KindSecondary, f.session.Kind(ctx), "close keeps markers")

	f.session.Resume(ctx)
	require.NoError(t, f.session.Logout(ctx))
	assert.False(t, f.session.Renewing())
	assert.Equal(t, model.KindNone, f.session.Kind(ctx))
	assert.Empty(t, f.navigator.Destinations())
}
