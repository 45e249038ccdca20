package directives

import (
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"

	"fleet/internal/apperr"
	"fleet/internal/reqctx"
)

// Middleware оборачивает резолвер поля.
type Middleware func(graphql.FieldResolveFn) graphql.FieldResolveFn

// Check — проверка доступа перед резолвером; nil пропускает дальше.
type Check func(p graphql.ResolveParams) error

func WithAuthCheck(check Check, resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := check(p); err != nil {
			return nil, err
		}
		return resolve(p)
	}
}

func Gate(check Check) Middleware {
	return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
		return WithAuthCheck(check, next)
	}
}

// Chain: middleware выполняются в порядке перечисления, резолвер последним.
func Chain(resolve graphql.FieldResolveFn, mws ...Middleware) graphql.FieldResolveFn {
	for i := len(mws) - 1; i >= 0; i-- {
		resolve = mws[i](resolve)
	}
	return resolve
}

const unauthenticatedMsg = "Only authenticated users are allowed to perform this query"

func IsAuthenticated(p graphql.ResolveParams) error {
	if reqctx.From(p.Context).User == nil {
		return apperr.Unauthorized(unauthenticatedMsg)
	}
	return nil
}

func IsAdmin(p graphql.ResolveParams) error {
	user := reqctx.From(p.Context).User
	if user == nil {
		return apperr.Unauthorized(unauthenticatedMsg)
	}
	if !user.IsAdmin {
		return apperr.Forbidden("Only administrators can perform this query")
	}
	return nil
}

// IsDeviceUser пускает администратора или владельца устройства из аргумента id/deviceId.
func IsDeviceUser(p graphql.ResolveParams) error {
	rc := reqctx.From(p.Context)

	id, ok := intArg(p.Args, "deviceId")
	if !ok {
		id, ok = intArg(p.Args, "id")
	}
	if !ok {
		return apperr.InvalidInput("Missing the device ID, so cannot verify this user can run this query against devices")
	}
	if rc.User == nil {
		return apperr.Unauthorized(unauthenticatedMsg)
	}
	if rc.Loaders == nil {
		return apperr.Internal("request context without loaders", nil)
	}

	device, err := rc.Loaders.DeviceByID(p.Context, id)()
	if err != nil {
		return err
	}
	if device == nil {
		return apperr.NotFound(fmt.Sprintf("No device found matching id: '%d'", id)).With("deviceId", id)
	}
	if rc.User.IsAdmin || device.Email == rc.User.Email {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("User %s is not associated with device '%d'", rc.User.Email, id))
}

// IsEmailUser для запросов по email владельца: админ или сам владелец.
func IsEmailUser(p graphql.ResolveParams) error {
	user := reqctx.From(p.Context).User
	if user == nil {
		return apperr.Unauthorized(unauthenticatedMsg)
	}
	email, _ := p.Args["email"].(string)
	if email == "" {
		return apperr.InvalidInput("Missing the email address")
	}
	if user.IsAdmin || user.Email == email {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("User %s is not allowed to view devices of %s", user.Email, email))
}

func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case int:
		return v, v != 0
	case int64:
		return int(v), v != 0
	case float64:
		return int(v), v != 0
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil && n != 0
	}
	return 0, false
}
