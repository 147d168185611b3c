// Package page is the presentation adapter of a storefront page: it renders
// cart and session state through the port hooks and turns user actions into
// ledger, session and API calls.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront-client/internal/cart"
	"github.com/nikolayk812/storefront-client/internal/domain"
	"github.com/nikolayk812/storefront-client/internal/notify"
	"github.com/nikolayk812/storefront-client/internal/port"
	"github.com/nikolayk812/storefront-client/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshInterval = 2 * time.Second

	LogoutPrompt = "Deseja realmente sair?"
)

type ProfileFetcher interface {
	Profile(ctx context.Context) (domain.Profile, error)
}

type Notifier interface {
	Show(message string, severity notify.Severity) notify.Notification
}

type Hooks struct {
	Counter   port.CartCounter
	Nav       port.AuthNav
	Navigator port.Navigator
	// Confirmer is optional; without it every confirmation is accepted.
	Confirmer port.Confirmer
}

type Page struct {
	session  *session.Session
	ledger   *cart.Ledger
	profiles ProfileFetcher
	notifier Notifier
	hooks    Hooks

	logger          *zap.Logger
	refreshInterval time.Duration
	profileGroup    singleflight.Group
}

type Option func(*Page)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		p.logger = logger
	}
}

func WithRefreshInterval(d time.Duration) Option {
	return func(p *Page) {
		if d > 0 {
			p.refreshInterval = d
		}
	}
}

func New(s *session.Session, ledger *cart.Ledger, profiles ProfileFetcher, notifier Notifier, hooks Hooks, opts ...Option) (*Page, error) {
	switch {
	case s == nil:
		return nil, fmt.Errorf("session is nil")
	case ledger == nil:
		return nil, fmt.Errorf("ledger is nil")
	case profiles == nil:
		return nil, fmt.Errorf("profiles is nil")
	case notifier == nil:
		return nil, fmt.Errorf("notifier is nil")
	case hooks.Counter == nil, hooks.Nav == nil, hooks.Navigator == nil:
		return nil, fmt.Errorf("counter, nav and navigator hooks are required")
	}

	p := &Page{
		session:         s,
		ledger:          ledger,
		profiles:        profiles,
		notifier:        notifier,
		hooks:           hooks,
		logger:          zap.NewNop(),
		refreshInterval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(p)
	}

	ledger.OnChange(func(c domain.Cart) {
		p.renderCount(c.ItemCount())
	})

	return p, nil
}

// Init renders the cart counter and the navigation for the current session.
func (p *Page) Init(ctx context.Context) error {
	if err := p.UpdateCartCounter(ctx); err != nil {
		return err
	}
	return p.UpdateAuthUI(ctx)
}

func (p *Page) UpdateCartCounter(ctx context.Context) error {
	count, err := p.ledger.ItemCount(ctx)
	if err != nil {
		return fmt.Errorf("ledger.ItemCount: %w", err)
	}

	p.renderCount(count)
	return nil
}

func (p *Page) UpdateAuthUI(ctx context.Context) error {
	loggedIn, err := p.session.IsLoggedIn(ctx)
	if err != nil {
		return fmt.Errorf("session.IsLoggedIn: %w", err)
	}

	if !loggedIn {
		p.renderLoggedOut()
		return nil
	}

	p.hooks.Nav.SetAuthLinksVisible(false)
	p.hooks.Nav.SetUserMenuVisible(true)
	return p.LoadUserName(ctx)
}

// LoadUserName greets the user by name. A failed profile fetch is treated as
// an expired session: the token is dropped and the page falls back to the
// logged-out navigation.
func (p *Page) LoadUserName(ctx context.Context) error {
	v, err, _ := p.profileGroup.Do("profile", func() (any, error) {
		return p.profiles.Profile(ctx)
	})
	if err != nil {
		p.logger.Error("load user name failed, ending session", zap.Error(err))

		if err := p.session.RemoveToken(ctx); err != nil {
			return fmt.Errorf("session.RemoveToken: %w", err)
		}
		p.renderLoggedOut()
		return nil
	}

	if profile := v.(domain.Profile); profile.Name != "" {
		p.hooks.Nav.SetUserName("Olá, " + profile.Name)
	}
	return nil
}

func (p *Page) AddToCart(ctx context.Context, product domain.Product) error {
	if err := p.ledger.AddItem(ctx, product); err != nil {
		p.notifier.Show("Não foi possível adicionar ao carrinho", notify.Error)
		return fmt.Errorf("ledger.AddItem: %w", err)
	}

	p.notifier.Show(product.Name+" adicionado ao carrinho!", notify.Success)
	return nil
}

// Logout asks for confirmation, ends the session and navigates to the
// sign-in page. It reports whether the user went through with it.
func (p *Page) Logout(ctx context.Context) (bool, error) {
	if p.hooks.Confirmer != nil && !p.hooks.Confirmer.Confirm(LogoutPrompt) {
		return false, nil
	}

	redirect, err := p.session.Logout(ctx)
	if err != nil {
		return false, fmt.Errorf("session.Logout: %w", err)
	}

	p.hooks.Navigator.Navigate(redirect.Location)
	return true, nil
}

// RequireAuth navigates to the sign-in page when nobody is logged in and
// reports whether the page may render.
func (p *Page) RequireAuth(ctx context.Context) (bool, error) {
	err := p.session.RequireAuth(ctx)

	var authErr *session.AuthRequiredError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &authErr):
		p.hooks.Navigator.Navigate(authErr.Redirect.Location)
		return false, nil
	default:
		return false, fmt.Errorf("session.RequireAuth: %w", err)
	}
}

// Run refreshes the cart counter periodically so changes made by another
// page sharing the store show up. It returns when ctx is done.
func (p *Page) Run(ctx context.Context) {
	ticker := time.NewTicker(p.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.UpdateCartCounter(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("cart counter refresh failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Page) renderCount(count int) {
	p.hooks.Counter.SetCartCount(count, count > 0)
}

func (p *Page) renderLoggedOut() {
	p.hooks.Nav.SetAuthLinksVisible(true)
	p.hooks.Nav.SetUserMenuVisible(false)
	p.hooks.Nav.SetUserName("")
}

func FormatCurrency(amount decimal.Decimal) string {
	return domain.BRL(amount).String()
}
