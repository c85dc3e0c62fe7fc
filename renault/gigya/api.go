package gigya

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlink-io/carlink/util"
	"github.com/carlink-io/carlink/util/request"
	"golang.org/x/oauth2"
)

// JWTExpiry is the identity token lifetime requested from gigya
const JWTExpiry = 900 * time.Second

// API is the gigya identity client. Session cookies and identity tokens
// obtained here gate all access to the vehicle api.
type API struct {
	*request.Helper
	uri    string
	apiKey string
}

// NewAPI creates the gigya api client for the given base uri and api key
func NewAPI(log *util.Logger, uri, apiKey string) *API {
	return &API{
		Helper: request.NewHelper(log),
		uri:    strings.TrimSuffix(uri, "/"),
		apiKey: apiKey,
	}
}

// Login authenticates the user and returns the session cookie
func (v *API) Login(user, password string) (string, error) {
	data := url.Values{
		"apiKey":   {v.apiKey},
		"loginID":  {user},
		"password": {password},
	}

	var res Response
	uri := fmt.Sprintf("%s/accounts.login", v.uri)

	req, err := request.New(http.MethodPost, uri, strings.NewReader(data.Encode()), request.URLEncoding)
	if err == nil {
		err = v.DoJSON(req, &res)
	}
	if err == nil {
		err = res.error()
	}

	return res.SessionInfo.CookieValue, err
}

// PersonID returns the person id attached to the session
func (v *API) PersonID(cookie string) (string, error) {
	data := url.Values{
		"apiKey":      {v.apiKey},
		"oauth_token": {cookie},
	}

	var res Response
	uri := fmt.Sprintf("%s/accounts.getAccountInfo?%s", v.uri, data.Encode())

	err := v.GetJSON(uri, &res)
	if err == nil {
		err = res.error()
	}

	return res.Data.PersonID, err
}

// JWT exchanges the session cookie for a short-lived identity token
func (v *API) JWT(cookie string) (*oauth2.Token, error) {
	data := url.Values{
		"apiKey":      {v.apiKey},
		"oauth_token": {cookie},
		"fields":      {"data.personId,data.gigyaDataCenter"},
		"expiration":  {strconv.Itoa(int(JWTExpiry / time.Second))},
	}

	var res Response
	uri := fmt.Sprintf("%s/accounts.getJWT?%s", v.uri, data.Encode())

	err := v.GetJSON(uri, &res)
	if err == nil {
		err = res.error()
	}

	token := &oauth2.Token{
		AccessToken: res.IDToken,
		Expiry:      time.Now().Add(JWTExpiry),
	}

	return token, err
}
