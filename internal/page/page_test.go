package page_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-client/internal/api"
	"github.com/nikolayk812/storefront-client/internal/api/apitest"
	"github.com/nikolayk812/storefront-client/internal/cart"
	"github.com/nikolayk812/storefront-client/internal/domain"
	"github.com/nikolayk812/storefront-client/internal/notify"
	"github.com/nikolayk812/storefront-client/internal/page"
	"github.com/nikolayk812/storefront-client/internal/port"
	"github.com/nikolayk812/storefront-client/internal/repository"
	"github.com/nikolayk812/storefront-client/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// idle keep-alive connections of the shared test transport
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type pageSuite struct {
	suite.Suite

	backend   *apitest.Backend
	user      domain.User
	store     port.Store
	session   *session.Session
	ledger    *cart.Ledger
	presenter *notify.Presenter
	view      *fakeView
	surface   *fakeSurface
	page      *page.Page
}

func TestPageSuite(t *testing.T) {
	suite.Run(t, new(pageSuite))
}

func (suite *pageSuite) SetupTest() {
	t := suite.T()

	suite.backend = apitest.NewBackend(t, nil, nil)
	suite.user = domain.User{ID: "1", Name: gofakeit.FirstName(), Email: gofakeit.Email()}
	suite.backend.AddUser(suite.user)

	suite.store = repository.NewMemory()

	var err error
	suite.session, err = session.New(suite.store)
	require.NoError(t, err)

	suite.ledger, err = cart.NewLedger(suite.store)
	require.NoError(t, err)

	client, err := api.New(suite.backend.URL(),
		api.WithHTTPClient(suite.backend.Server.Client()),
		api.WithTokenSource(suite.session))
	require.NoError(t, err)

	suite.view = &fakeView{confirm: true}
	suite.surface = &fakeSurface{}
	suite.presenter = notify.New(suite.surface)

	suite.page, err = page.New(suite.session, suite.ledger, client, suite.presenter, page.Hooks{
		Counter:   suite.view,
		Nav:       suite.view,
		Navigator: suite.view,
		Confirmer: suite.view,
	}, page.WithRefreshInterval(10*time.Millisecond))
	require.NoError(t, err)
}

func (suite *pageSuite) TearDownTest() {
	suite.presenter.Close()
	suite.backend.Server.Client().CloseIdleConnections()
}

func (suite *pageSuite) login() {
	token := suite.backend.Token(suite.user.Email, time.Hour)
	suite.Require().NoError(suite.session.SaveToken(suite.T().Context(), token))
}

func (suite *pageSuite) TestInit_LoggedOut() {
	t := suite.T()

	require.NoError(t, suite.page.Init(t.Context()))

	state := suite.view.snapshot()
	assert.Equal(t, 0, state.count)
	assert.False(t, state.countVisible)
	assert.True(t, state.authLinksVisible)
	assert.False(t, state.userMenuVisible)
	assert.Empty(t, state.userName)
	assert.Zero(t, suite.backend.ProfileHits())
}

func (suite *pageSuite) TestInit_LoggedIn() {
	t := suite.T()
	ctx := t.Context()

	suite.login()
	require.NoError(t, suite.ledger.AddItem(ctx, randomProduct("1")))
	require.NoError(t, suite.ledger.AddItem(ctx, randomProduct("1")))

	require.NoError(t, suite.page.Init(ctx))

	state := suite.view.snapshot()
	assert.Equal(t, 2, state.count)
	assert.True(t, state.countVisible)
	assert.False(t, state.authLinksVisible)
	assert.True(t, state.userMenuVisible)
	assert.Equal(t, "Olá, "+suite.user.Name, state.userName)
}

func (suite *pageSuite) TestInit_ProfileFailureEndsSession() {
	tests := []struct {
		name    string
		prepare func()
	}{
		{
			name: "backend error",
			prepare: func() {
				suite.login()
				suite.backend.ProfileFailure.Store(http.StatusInternalServerError)
			},
		},
		{
			name: "token rejected",
			prepare: func() {
				suite.Require().NoError(suite.session.SaveToken(suite.T().Context(), "forged"))
			},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()
			defer suite.backend.ProfileFailure.Store(0)

			tt.prepare()

			require.NoError(t, suite.page.Init(ctx))

			loggedIn, err := suite.session.IsLoggedIn(ctx)
			require.NoError(t, err)
			assert.False(t, loggedIn)

			state := suite.view.snapshot()
			assert.True(t, state.authLinksVisible)
			assert.False(t, state.userMenuVisible)
			assert.Empty(t, state.userName)
		})
	}
}

func (suite *pageSuite) TestAddToCart() {
	t := suite.T()
	ctx := t.Context()

	p := randomProduct("7")
	require.NoError(t, suite.page.AddToCart(ctx, p))

	state := suite.view.snapshot()
	assert.Equal(t, 1, state.count)
	assert.True(t, state.countVisible)

	shown := suite.surface.snapshot()
	require.Len(t, shown, 1)
	assert.Equal(t, p.Name+" adicionado ao carrinho!", shown[0].Message)
	assert.Equal(t, notify.Success, shown[0].Severity)
}

func (suite *pageSuite) TestAddToCart_Invalid() {
	t := suite.T()

	err := suite.page.AddToCart(t.Context(), domain.Product{Name: "ghost"})
	require.ErrorIs(t, err, cart.ErrInvalidProduct)

	shown := suite.surface.snapshot()
	require.Len(t, shown, 1)
	assert.Equal(t, notify.Error, shown[0].Severity)
}

func (suite *pageSuite) TestCounterFollowsLedger() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.ledger.AddItem(ctx, randomProduct("1")))
	require.NoError(t, suite.ledger.UpdateQuantity(ctx, "1", 4))
	assert.Equal(t, 4, suite.view.snapshot().count)

	require.NoError(t, suite.ledger.Clear(ctx))
	state := suite.view.snapshot()
	assert.Equal(t, 0, state.count)
	assert.False(t, state.countVisible)
}

func (suite *pageSuite) TestLogout() {
	t := suite.T()
	ctx := t.Context()

	suite.login()

	suite.view.setConfirm(false)
	done, err := suite.page.Logout(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []string{page.LogoutPrompt}, suite.view.snapshot().prompts)

	loggedIn, err := suite.session.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)

	suite.view.setConfirm(true)
	done, err = suite.page.Logout(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{session.DefaultSignInURL}, suite.view.snapshot().navigations)

	loggedIn, err = suite.session.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func (suite *pageSuite) TestRequireAuth() {
	t := suite.T()
	ctx := t.Context()

	ok, err := suite.page.RequireAuth(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{session.DefaultSignInURL}, suite.view.snapshot().navigations)

	suite.login()

	ok, err = suite.page.RequireAuth(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, suite.view.snapshot().navigations, 1)
}

func (suite *pageSuite) TestRun_PicksUpOtherWriters() {
	t := suite.T()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		suite.page.Run(ctx)
	}()

	// a second ledger over the same store, as another page would have
	other, err := cart.NewLedger(suite.store)
	require.NoError(t, err)
	require.NoError(t, other.AddItem(t.Context(), randomProduct("9")))

	assert.Eventually(t, func() bool {
		return suite.view.snapshot().count == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func (suite *pageSuite) TestLoadUserName_Concurrent() {
	t := suite.T()
	ctx := t.Context()

	suite.login()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, suite.page.LoadUserName(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, "Olá, "+suite.user.Name, suite.view.snapshot().userName)
	assert.LessOrEqual(t, suite.backend.ProfileHits(), int64(5))
}

func TestFormatCurrency(t *testing.T) {
	assert.Contains(t, page.FormatCurrency(decimal.RequireFromString("19.9")), "R$")
}

func TestNew_RequiresHooks(t *testing.T) {
	store := repository.NewMemory()
	s, err := session.New(store)
	require.NoError(t, err)
	l, err := cart.NewLedger(store)
	require.NoError(t, err)
	client, err := api.New("")
	require.NoError(t, err)
	presenter := notify.New(&fakeSurface{})
	defer presenter.Close()

	_, err = page.New(s, l, client, presenter, page.Hooks{})
	require.Error(t, err)
}

func randomProduct(id string) domain.Product {
	return domain.Product{
		ID:        domain.ProductID(id),
		Name:      gofakeit.ProductName(),
		UnitPrice: decimal.NewFromFloat(gofakeit.Price(1, 50)).Round(2),
		ImageURL:  gofakeit.URL(),
	}
}

type viewState struct {
	count            int
	countVisible     bool
	authLinksVisible bool
	userMenuVisible  bool
	userName         string
	navigations      []string
	prompts          []string
}

type fakeView struct {
	mu      sync.Mutex
	state   viewState
	confirm bool
}

func (v *fakeView) SetCartCount(count int, visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.count, v.state.countVisible = count, visible
}

func (v *fakeView) SetAuthLinksVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.authLinksVisible = visible
}

func (v *fakeView) SetUserMenuVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.userMenuVisible = visible
}

func (v *fakeView) SetUserName(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.userName = text
}

func (v *fakeView) Navigate(location string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.navigations = append(v.state.navigations, location)
}

func (v *fakeView) Confirm(prompt string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.prompts = append(v.state.prompts, prompt)
	return v.confirm
}

func (v *fakeView) setConfirm(confirm bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.confirm = confirm
}

func (v *fakeView) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.state
	s.navigations = append([]string(nil), v.state.navigations...)
	s.prompts = append([]string(nil), v.state.prompts...)
	return s
}

type fakeSurface struct {
	mu    sync.Mutex
	shown []notify.Notification
}

func (s *fakeSurface) Append(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n)
}

func (s *fakeSurface) BeginExit(uuid.UUID) {}
func (s *fakeSurface) Remove(uuid.UUID)    {}

func (s *fakeSurface) snapshot() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.shown...)
}
