package upbitapi

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cointrail/cointrail/pkg/types"
)

const (
	// ProductionAPIURL is the official Upbit open API endpoint
	ProductionAPIURL = "https://api.upbit.com/v1"

	UserAgent = "cointrail/1.0"

	defaultHTTPTimeout = time.Second * 15
)

// Response is wrapper for standard http.Response and provides
// more methods.
type Response struct {
	*http.Response

	// Body overrides the composited Body field.
	Body []byte
}

// newResponse is a wrapper of the http.Response instance, it reads the response body and close the file.
func newResponse(r *http.Response) (response *Response, err error) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	err = r.Body.Close()
	response = &Response{Response: r, Body: body}
	return response, err
}

func (r *Response) DecodeJSON(o interface{}) error {
	return json.Unmarshal(r.Body, o)
}

type RestClient struct {
	client *http.Client

	BaseURL *url.URL

	// Authentication
	accessKey string
	secretKey string

	OrderService  *OrderService
	MarketService *MarketService
}

func NewRestClientWithHttpClient(baseURL string, httpClient *http.Client) *RestClient {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(err)
	}

	// relative endpoint paths resolve against the base path, which must end
	// with a slash or ResolveReference drops the last segment
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	var client = &RestClient{
		client:  httpClient,
		BaseURL: u,
	}

	client.OrderService = &OrderService{client}
	client.MarketService = &MarketService{client}
	return client
}

func NewRestClient(baseURL string) *RestClient {
	return NewRestClientWithHttpClient(baseURL, &http.Client{
		Timeout: defaultHTTPTimeout,
	})
}

// Auth sets the key pair used for requests that require authentication.
// The client itself stays stateless across calls.
func (c *RestClient) Auth(accessKey, secretKey string) *RestClient {
	c.accessKey = accessKey
	c.secretKey = secretKey
	return c
}

// newRequest creates a new public API request. Relative url can be provided in refURL.
func (c *RestClient) newRequest(ctx context.Context, method, refURL string, params url.Values) (*http.Request, error) {
	rel, err := url.Parse(refURL)
	if err != nil {
		return nil, err
	}

	u := c.BaseURL.ResolveReference(rel)
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Add("User-Agent", UserAgent)
	req.Header.Add("Accept", "application/json")
	return req, nil
}

// newAuthenticatedRequest creates a new http request for authenticated routes,
// attaching the signed bearer token the exchange expects.
func (c *RestClient) newAuthenticatedRequest(ctx context.Context, method, refURL string, params url.Values) (*http.Request, error) {
	if len(c.accessKey) == 0 || len(c.secretKey) == 0 {
		return nil, errors.Wrap(types.ErrAuthentication, "empty api access key or secret key")
	}

	req, err := c.newRequest(ctx, method, refURL, params)
	if err != nil {
		return nil, err
	}

	token, err := signToken(c.accessKey, c.secretKey, params)
	if err != nil {
		return nil, errors.Wrap(types.ErrAuthentication, err.Error())
	}

	req.Header.Add("Authorization", "Bearer "+token)
	return req, nil
}

// canonicalQueryString builds the string the query hash is computed over:
// the percent-encoded query string decoded again, with keys in a stable
// (sorted) order. The decode step matches the exchange's reference
// implementation, which hashes the URL-decoded form.
func canonicalQueryString(params url.Values) string {
	encoded := params.Encode()
	if encoded == "" {
		return ""
	}

	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		// url.Values.Encode never produces an invalid escape
		return encoded
	}

	return decoded
}

// signToken produces the signed bearer credential: a JWT carrying the
// access key, a fresh nonce, and the SHA-512 hash of the canonical query
// string, signed with the secret key.
func signToken(accessKey, secretKey string, params url.Values) (string, error) {
	claims := jwt.MapClaims{
		"access_key": accessKey,
		"nonce":      uuid.NewString(),
	}

	if query := canonicalQueryString(params); query != "" {
		hash := sha512.Sum512([]byte(query))
		claims["query_hash"] = hex.EncodeToString(hash[:])
		claims["query_hash_alg"] = "SHA512"
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}

func (c *RestClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	return c.client.Do(req)
}

// sendRequest sends the request to the API server and handle the response
func (c *RestClient) sendRequest(req *http.Request) (*Response, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	// newResponse reads the response body and return a new Response object
	response, err := newResponse(resp)
	if err != nil {
		return response, err
	}

	// Check error, if there is an error, return the ErrorResponse struct type
	if isError(response) {
		errorResponse, err := toErrorResponse(response)
		if err != nil {
			return response, err
		}
		return response, errorResponse
	}

	return response, nil
}

func (c *RestClient) sendAuthenticatedRequest(ctx context.Context, method, refURL string, params url.Values) (*Response, error) {
	req, err := c.newAuthenticatedRequest(ctx, method, refURL, params)
	if err != nil {
		return nil, err
	}

	return c.sendRequest(req)
}

func (c *RestClient) sendPublicRequest(ctx context.Context, method, refURL string, params url.Values) (*Response, error) {
	req, err := c.newRequest(ctx, method, refURL, params)
	if err != nil {
		return nil, err
	}

	return c.sendRequest(req)
}

// ErrorField is the error payload shape the exchange returns.
type ErrorField struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ErrorResponse is the custom error type that is returned if the API
// returns a non-2xx status. It keeps the status code and the exchange
// error body for diagnostics.
type ErrorResponse struct {
	*Response
	Err ErrorField `json:"error"`
}

func (r *ErrorResponse) Error() string {
	return fmt.Sprintf("%s %s: %d %s %s",
		r.Response.Response.Request.Method,
		r.Response.Response.Request.URL.String(),
		r.Response.Response.StatusCode,
		r.Err.Name,
		r.Err.Message,
	)
}

// Unwrap classifies the upstream status into the shared error taxonomy so
// callers can errors.Is against types sentinels.
func (r *ErrorResponse) Unwrap() error {
	switch r.Response.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.ErrAuthentication
	case http.StatusTooManyRequests:
		return types.ErrRateLimit
	}
	return nil
}

// isError check the response status code so see if a response is an error.
func isError(response *Response) bool {
	var c = response.StatusCode
	return c < 200 || c > 299
}

// toErrorResponse tries to convert/parse the server response to the standard Error interface object
func toErrorResponse(response *Response) (errorResponse *ErrorResponse, err error) {
	errorResponse = &ErrorResponse{Response: response}

	if err := response.DecodeJSON(errorResponse); err != nil {
		// keep the raw body when the error payload is not json
		errorResponse.Err.Message = string(response.Body)
	}

	return errorResponse, nil
}
