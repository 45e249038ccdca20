package gql

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet/internal/apperr"
	"fleet/internal/mocks"
	"fleet/internal/models"
	"fleet/internal/reqctx"
	"fleet/internal/token"
)

const secret = "test-secret"

type response struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

type fixture struct {
	ds      *mocks.MockDataSource
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	ds := mocks.NewMockDataSource(ctrl)
	schema, err := NewSchema(ds)
	require.NoError(t, err)
	return &fixture{ds: ds, handler: NewHandler(schema, &reqctx.Builder{Source: ds, Secret: secret})}
}

func issue(t *testing.T, email string) string {
	t.Helper()
	raw, err := token.Issue(map[string]any{"scope": "can_view_own_devices"}, secret, token.Options{
		Issuer: "fleet", Subject: email, ExpiresIn: time.Hour,
	})
	require.NoError(t, err)
	return raw
}

// as возвращает токен пользователя и ожидает его поиск при сборке контекста.
func (f *fixture) as(t *testing.T, user *models.User) string {
	f.ds.EXPECT().FindUserByEmail(gomock.Any(), user.Email, true).Return(user, nil)
	return issue(t, user.Email)
}

func (f *fixture) post(t *testing.T, bearer, query string, vars map[string]interface{}) (int, response) {
	t.Helper()
	body, err := json.Marshal(Request{Query: query, Variables: vars})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	return f.serve(t, r)
}

func (f *fixture) serve(t *testing.T, r *http.Request) (int, response) {
	t.Helper()
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	var res response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

func requireError(t *testing.T, res response, code int) string {
	t.Helper()
	require.NotEmpty(t, res.Errors)
	assert.Nil(t, res.Data)
	assert.EqualValues(t, code, res.Errors[0].Extensions["code"])
	return res.Errors[0].Message
}

var (
	admin = &models.User{Email: "admin@x.com", IsAdmin: true, Devices: []*models.Device{}}
	owner = &models.User{Email: "a@x.com", Permissions: []string{"update"}, Devices: []*models.Device{}}
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	tok := issue(t, "a@x.com")
	f.ds.EXPECT().AuthenticateUser(gomock.Any(), "a@x.com", "ValidPass1!").Return(tok, nil)

	code, res := f.post(t, "", `mutation { login(email: "a@x.com", password: "ValidPass1!") }`, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, res.Errors)
	assert.Equal(t, tok, res.Data["login"])
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.ds.EXPECT().AuthenticateUser(gomock.Any(), "ghost@x.com", "ValidPass1!").
		Return("", apperr.Unauthorized("Invalid login credentials"))

	code, res := f.post(t, "", `mutation($e: Email!, $p: Password!) { login(email: $e, password: $p) }`,
		map[string]interface{}{"e": "ghost@x.com", "p": "ValidPass1!"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid login credentials", requireError(t, res, 401))
}

func TestLoginRejectsMalformedArguments(t *testing.T) {
	f := newFixture(t)

	code, res := f.post(t, "", `mutation { login(email: "nope", password: "ValidPass1!") }`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "The email is not in a valid format: 'nope'", requireError(t, res, 400))

	code, res = f.post(t, "", `mutation { login(email: "a@x.com", password: "short") }`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, requireError(t, res, 400), "Password is not in a valid format")
}

func TestUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	code, res := f.post(t, "", `{ users { email } }`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	requireError(t, res, 401)

	code, res = f.post(t, f.as(t, owner), `{ users { email } }`, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only administrators can perform this query", requireError(t, res, 403))
}

func TestUsersLoadDevicesLazily(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, admin)
	f.ds.EXPECT().FindAllUsers(gomock.Any()).Return([]*models.User{
		{Email: "a@x.com", Permissions: []string{"update", "delete"}},
		{Email: "b@x.com", Permissions: []string{}},
	}, nil)
	f.ds.EXPECT().FindDevicesByEmail(gomock.Any(), "a@x.com").Return([]*models.Device{{ID: 1, Name: "D1", Email: "a@x.com"}}, nil).Times(1)
	f.ds.EXPECT().FindDevicesByEmail(gomock.Any(), "b@x.com").Return([]*models.Device{}, nil).Times(1)

	code, res := f.post(t, tok, `{ users { email permissions canPerformUpdates devices { id name } } }`, nil)
	require.Equal(t, http.StatusOK, code, res.Errors)

	users := res.Data["users"].([]interface{})
	require.Len(t, users, 2)
	a := users[0].(map[string]interface{})
	assert.Equal(t, "a@x.com", a["email"])
	assert.Equal(t, []interface{}{"update", "delete"}, a["permissions"])
	assert.Equal(t, true, a["canPerformUpdates"])
	assert.Len(t, a["devices"], 1)
	assert.Empty(t, users[1].(map[string]interface{})["devices"])
}

func TestDeviceOwnersBatched(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, admin)
	finished := time.Now().Add(-2 * time.Hour)
	f.ds.EXPECT().FindAllDevices(gomock.Any()).Return([]*models.Device{
		{ID: 1, Name: "D1", Email: "a@x.com", Version: "1.0.0", InProgress: true},
		{ID: 2, Name: "D2", Email: "a@x.com", Version: "1.2.0", IsCurrent: true, LastUpdatedAt: &finished},
		{ID: 3, Name: "D3", Email: "b@x.com"},
	}, nil)
	f.ds.EXPECT().FindUserByEmail(gomock.Any(), "a@x.com", false).Return(&models.User{Email: "a@x.com"}, nil).Times(1)
	f.ds.EXPECT().FindUserByEmail(gomock.Any(), "b@x.com", false).Return(&models.User{Email: "b@x.com"}, nil).Times(1)

	code, res := f.post(t, tok, `{ devices { id version isCurrent inProgress lastUpdatedAt lastUpdated user { email } } }`, nil)
	require.Equal(t, http.StatusOK, code, res.Errors)

	devices := res.Data["devices"].([]interface{})
	require.Len(t, devices, 3)
	d1 := devices[0].(map[string]interface{})
	assert.Equal(t, "1.0.0", d1["version"])
	assert.Equal(t, true, d1["inProgress"])
	assert.Nil(t, d1["lastUpdatedAt"])
	d2 := devices[1].(map[string]interface{})
	assert.EqualValues(t, finished.UnixMilli(), d2["lastUpdatedAt"])
	assert.Equal(t, "2 hours ago", d2["lastUpdated"])
	d3 := devices[2].(map[string]interface{})
	assert.Nil(t, d3["version"])
	assert.Equal(t, "b@x.com", d3["user"].(map[string]interface{})["email"])
}

func TestDevicesSortAndPage(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, admin)
	f.ds.EXPECT().FindAllDevices(gomock.Any()).Return([]*models.Device{
		{ID: 1, Name: "b"}, {ID: 2, Name: "a"}, {ID: 3, Name: "c"},
	}, nil)

	code, res := f.post(t, tok, `{ devices(sortBy: NAME, ascending: false, limit: 2) { id } }`, nil)
	require.Equal(t, http.StatusOK, code, res.Errors)
	devices := res.Data["devices"].([]interface{})
	require.Len(t, devices, 2)
	assert.EqualValues(t, 3, devices[0].(map[string]interface{})["id"])
	assert.EqualValues(t, 1, devices[1].(map[string]interface{})["id"])
}

func TestInternalErrorsAreCensored(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, admin)
	f.ds.EXPECT().FindAllDevices(gomock.Any()).Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	code, res := f.post(t, tok, `{ devices { id } }`, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, CensoredMessage, requireError(t, res, 500))
	assert.Equal(t, "INTERNAL", res.Errors[0].Extensions["kind"])
}

func TestGetDeviceByID(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, owner)
	f.ds.EXPECT().FindDeviceByID(gomock.Any(), 1).
		Return(&models.Device{ID: 1, Name: "D1", Email: "a@x.com", Version: "1.0.0", IsCurrent: true}, nil).
		Times(1)

	code, res := f.post(t, tok, `{ getDeviceById(id: 1) { id name version isCurrent } }`, nil)
	require.Equal(t, http.StatusOK, code, res.Errors)
	d := res.Data["getDeviceById"].(map[string]interface{})
	assert.Equal(t, "D1", d["name"])
	assert.Equal(t, true, d["isCurrent"])
}

func TestGetDeviceByIDFailures(t *testing.T) {
	f := newFixture(t)

	code, res := f.post(t, "", `{ getDeviceById(id: 0) { id } }`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Must be an integer value greater than zero: 0", requireError(t, res, 400))

	tok := f.as(t, &models.User{Email: "b@x.com", Devices: []*models.Device{}})
	f.ds.EXPECT().FindDeviceByID(gomock.Any(), 1).Return(&models.Device{ID: 1, Email: "a@x.com"}, nil)
	code, res = f.post(t, tok, `{ getDeviceById(id: 1) { id } }`, nil)
	assert.Equal(t, http.StatusForbidden, code)
	requireError(t, res, 403)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, admin)
	f.ds.EXPECT().FindUserByEmail(gomock.Any(), "ghost@x.com", true).Return(nil, nil)

	code, res := f.post(t, tok, `{ getUserByEmail(email: "ghost@x.com") { email } }`, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No user record found matching email: ghost@x.com", requireError(t, res, 404))
}

func TestGetDevicesByEmail(t *testing.T) {
	f := newFixture(t)
	tok := f.as(t, owner)
	f.ds.EXPECT().FindDevicesByEmail(gomock.Any(), "a@x.com").Return([]*models.Device{{ID: 4, Email: "a@x.com"}}, nil)

	code, res := f.post(t, tok, `{ getDevicesByEmail(email: "a@x.com") { id } }`, nil)
	require.Equal(t, http.StatusOK, code, res.Errors)
	assert.Len(t, res.Data["getDevicesByEmail"], 1)

	code, res = f.post(t, f.as(t, owner), `{ getDevicesByEmail(email: "b@x.com") { id } }`, nil)
	assert.Equal(t, http.StatusForbidden, code)
	requireError(t, res, 403)
}

func TestVerifyTokenExposesMillis(t *testing.T) {
	f := newFixture(t)
	tok := issue(t, "a@x.com")
	exp, iat := time.Now().Add(time.Hour).Unix(), time.Now().Unix()
	f.ds.EXPECT().VerifyToken(gomock.Any(), tok).Return(&models.DecodedJwt{Sub: "a@x.com", Iss: "fleet", Exp: &exp, Iat: &iat}, nil)

	code, res := f.post(t, "", `query($t: Jwt!) { verifyToken(token: $t) { sub iss aud exp iat } }`, map[string]interface{}{"t": tok})
	require.Equal(t, http.StatusOK, code, res.Errors)
	d := res.Data["verifyToken"].(map[string]interface{})
	assert.Equal(t, "a@x.com", d["sub"])
	assert.Nil(t, d["aud"])
	assert.EqualValues(t, exp*1000, d["exp"])
	assert.EqualValues(t, iat*1000, d["iat"])
}

func TestMeWithRejectedToken(t *testing.T) {
	f := newFixture(t)

	code, res := f.post(t, "not-a-token", `{ me { email } }`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	requireError(t, res, 401)

	code, res = f.post(t, f.as(t, owner), `{ me { email canPerformUpdates } }`, nil)
	require.Equal(t, http.StatusOK, code, res.Errors)
	assert.Equal(t, "a@x.com", res.Data["me"].(map[string]interface{})["email"])
}

func TestGetAndRawBody(t *testing.T) {
	f := newFixture(t)
	f.ds.EXPECT().FindLatestVersion(gomock.Any()).Return("1.2.0", nil)
	f.ds.EXPECT().FindLatestVersion(gomock.Any()).Return("", nil)

	r := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ getLatestFirmwareVersion }"), nil)
	code, res := f.serve(t, r)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.2.0", res.Data["getLatestFirmwareVersion"])

	r = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{ getLatestFirmwareVersion }"))
	r.Header.Set("Content-Type", "application/graphql")
	code, res = f.serve(t, r)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, res.Data["getLatestFirmwareVersion"])
}

func TestMalformedRequests(t *testing.T) {
	f := newFixture(t)

	code, res := f.post(t, "", `{ users `, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	requireError(t, res, 400)

	code, res = f.post(t, "", `{ noSuchField }`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	requireError(t, res, 400)

	code, res = f.post(t, "", ``, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Must provide query string", requireError(t, res, 400))

	code, _ = f.serve(t, httptest.NewRequest(http.MethodPut, "/graphql", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBuildFailureIsCensored(t *testing.T) {
	f := newFixture(t)
	f.ds.EXPECT().FindUserByEmail(gomock.Any(), "a@x.com", true).Return(nil, errors.New("db down"))

	code, res := f.post(t, issue(t, "a@x.com"), `{ getLatestFirmwareVersion }`, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, CensoredMessage, requireError(t, res, 500))
}
