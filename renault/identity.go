package renault

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/carlink-io/carlink/api"
	"github.com/carlink-io/carlink/provider"
	"github.com/carlink-io/carlink/renault/gigya"
	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
	"github.com/carlink-io/carlink/util/request"
	"golang.org/x/oauth2"
)

const (
	sessionExpiry = 6 * time.Hour   // gigya session cookie
	accessExpiry  = 5 * time.Minute // kamereon access token
	renewMargin   = time.Minute
)

// Identity performs the two-tier login: the gigya session authenticates the
// user, the identity token derived from it is exchanged for account-scoped
// kamereon access tokens. Session, identity token and access tokens expire on
// independent clocks and are refreshed separately from cached state, never
// from a re-submitted password.
type Identity struct {
	log *util.Logger
	api *gigya.API

	// kamereon token exchange, deliberately separate from the data client
	helper   *request.Helper
	tokenURI string
	apiKey   string
	country  string

	user, password string

	session *provider.Cached[string]
	jwt     *provider.Cached[*oauth2.Token]
	person  *provider.Cached[string]

	mu     sync.Mutex
	tokens map[string]*provider.Cached[string]
}

var _ oauth2.TokenSource = (*Identity)(nil)
var _ kamereon.Identity = (*Identity)(nil)

// NewIdentity creates the session client for the given locale settings
func NewIdentity(log *util.Logger, settings Settings) *Identity {
	v := &Identity{
		log:      log,
		api:      gigya.NewAPI(log, settings.GigyaURL, settings.GigyaAPIKey),
		helper:   request.NewHelper(log),
		tokenURI: settings.KamereonURL,
		apiKey:   settings.KamereonAPIKey,
		country:  settings.Country,
		tokens:   make(map[string]*provider.Cached[string]),
	}

	v.session = provider.NewCached(v.login, sessionExpiry)
	v.jwt = provider.NewCached(v.exchangeJWT, gigya.JWTExpiry-renewMargin)
	v.person = provider.NewCached(v.personID, 24*time.Hour)

	return v
}

// Login validates the credentials and establishes the session. Only
// api.ErrInvalidCredentials indicates a user-correctable failure, anything
// else is transient and may be retried with unchanged credentials.
func (v *Identity) Login(user, password string) error {
	v.user, v.password = user, password
	v.session.Reset()
	v.jwt.Reset()

	_, err := v.session.Get()
	return err
}

func (v *Identity) login() (string, error) {
	cookie, err := v.api.Login(v.user, v.password)
	return cookie, classifyAuth(err)
}

// JWT returns the identity token, lazily refreshing session and token when
// their respective expiries have passed
func (v *Identity) JWT() (string, error) {
	token, err := v.jwt.Get()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Token implements oauth2.TokenSource for the identity token
func (v *Identity) Token() (*oauth2.Token, error) {
	return v.jwt.Get()
}

func (v *Identity) exchangeJWT() (*oauth2.Token, error) {
	cookie, err := v.session.Get()
	if err != nil {
		return nil, err
	}

	token, err := v.api.JWT(cookie)
	if err != nil {
		// the session may have been revoked server-side, force a full
		// re-login on next use
		v.session.Reset()
		return nil, classifyAuth(err)
	}

	return token, nil
}

// PersonID returns the person id of the authenticated identity
func (v *Identity) PersonID() (string, error) {
	return v.person.Get()
}

func (v *Identity) personID() (string, error) {
	cookie, err := v.session.Get()
	if err != nil {
		return "", err
	}

	id, err := v.api.PersonID(cookie)
	if err != nil {
		// the session may have been revoked server-side, force a full
		// re-login on next use
		v.session.Reset()
		return "", classifyAuth(err)
	}

	return id, nil
}

// AccessToken returns the account-scoped access token. Concurrent callers
// hitting an expired token trigger exactly one exchange round trip.
func (v *Identity) AccessToken(accountID string) (string, error) {
	v.mu.Lock()
	c, ok := v.tokens[accountID]
	if !ok {
		c = provider.NewCached(func() (string, error) {
			return v.exchangeAccessToken(accountID)
		}, accessExpiry)
		v.tokens[accountID] = c
	}
	v.mu.Unlock()

	return c.Get()
}

func (v *Identity) exchangeAccessToken(accountID string) (string, error) {
	jwt, err := v.JWT()
	if err != nil {
		return "", err
	}

	var res struct {
		Errors      []kamereon.Error `json:"errors"`
		AccessToken string           `json:"accessToken"`
	}

	uri := fmt.Sprintf("%s/commerce/v1/accounts/%s/kamereon/token?country=%s", v.tokenURI, accountID, v.country)

	req, err := request.New(http.MethodGet, uri, nil, request.AcceptJSON, map[string]string{
		"apikey":           v.apiKey,
		"x-gigya-id_token": jwt,
	})
	if err == nil {
		err = v.helper.DoJSON(req, &res)
	}
	if err == nil && len(res.Errors) > 0 {
		err = &res.Errors[0]
	}
	if err == nil && res.AccessToken == "" {
		err = errors.New("missing access token")
	}

	return res.AccessToken, classifyAuth(err)
}

// classifyAuth marks unclassified authentication-layer faults as transient
func classifyAuth(err error) error {
	switch {
	case err == nil,
		errors.Is(err, api.ErrInvalidCredentials),
		errors.Is(err, api.ErrMustRetry),
		errors.Is(err, api.ErrAccessDenied),
		errors.Is(err, api.ErrNotSupported):
		return err
	default:
		return fmt.Errorf("%v: %w", err, api.ErrMustRetry)
	}
}
