package gql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"fleet/internal/apperr"
	"fleet/internal/listing"
	"fleet/internal/loader"
	"fleet/internal/models"
	"fleet/internal/reqctx"
)

// Execute выполняет запрос. Если в ctx нет контекста запроса с лоадерами,
// создаётся анонимный.
func (s *Schema) Execute(ctx context.Context, query string, variables map[string]interface{}, operationName string) *graphql.Result {
	rc := reqctx.From(ctx)
	if rc.Loaders == nil {
		rc = &reqctx.RequestContext{User: rc.User, Token: rc.Token, Log: rc.Log, Loaders: loader.New(s.ds)}
		ctx = reqctx.With(ctx, rc)
	}
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: variables,
		OperationName:  operationName,
		Context:        ctx,
	})
}

func listOptions(args map[string]interface{}) listing.Options {
	opts := listing.Options{Ascending: true}
	if v, ok := args["sortBy"].(string); ok {
		opts.SortBy = listing.SortField(v)
	}
	if v, ok := args["ascending"].(bool); ok {
		opts.Ascending = v
	}
	if v, ok := args["limit"].(int); ok {
		opts.Limit = v
	}
	if v, ok := args["offset"].(int); ok {
		opts.Offset = v
	}
	return opts
}

func (s *Schema) resolveUsers(p graphql.ResolveParams) (interface{}, error) {
	return s.ds.FindAllUsers(p.Context)
}

func (s *Schema) resolveDevices(p graphql.ResolveParams) (interface{}, error) {
	devices, err := s.ds.FindAllDevices(p.Context)
	if err != nil {
		return nil, err
	}
	return listing.Apply(devices, listOptions(p.Args)), nil
}

func (s *Schema) resolveDevicesByEmail(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	devices, err := reqctx.From(p.Context).Loaders.DevicesByEmail(p.Context, email)()
	if err != nil {
		return nil, err
	}
	return listing.Apply(devices, listOptions(p.Args)), nil
}

func (s *Schema) resolveUserByEmail(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	user, err := s.ds.FindUserByEmail(p.Context, email, true)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound(fmt.Sprintf("No user record found matching email: %s", email)).With("email", email)
	}
	return user, nil
}

func (s *Schema) resolveDeviceByID(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)
	// кэш лоадера уже прогрет проверкой IsDeviceUser
	device, err := reqctx.From(p.Context).Loaders.DeviceByID(p.Context, id)()
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, apperr.NotFound(fmt.Sprintf("No device record found matching id: %d", id)).With("id", id)
	}
	return device, nil
}

func (s *Schema) resolveExpiredUsers(p graphql.ResolveParams) (interface{}, error) {
	return s.ds.FindExpiredUsers(p.Context)
}

func (s *Schema) resolveLatestVersion(p graphql.ResolveParams) (interface{}, error) {
	v, err := s.ds.FindLatestVersion(p.Context)
	if err != nil || v == "" {
		return nil, err
	}
	return v, nil
}

func (s *Schema) resolveVerifyToken(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["token"].(string)
	return s.ds.VerifyToken(p.Context, raw)
}

func (s *Schema) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	return reqctx.From(p.Context).User, nil
}

func (s *Schema) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)
	return s.ds.AuthenticateUser(p.Context, email, password)
}

// resolveUserDevices: устройства, уже загруженные вместе с пользователем, или батч через лоадер.
func (s *Schema) resolveUserDevices(p graphql.ResolveParams) (interface{}, error) {
	u, ok := p.Source.(*models.User)
	if !ok || u == nil {
		return nil, nil
	}
	if u.Devices != nil {
		return u.Devices, nil
	}
	thunk := reqctx.From(p.Context).Loaders.DevicesByEmail(p.Context, u.Email)
	return func() (interface{}, error) {
		return thunk()
	}, nil
}

func (s *Schema) resolveDeviceUser(p graphql.ResolveParams) (interface{}, error) {
	d, ok := p.Source.(*models.Device)
	if !ok || d == nil || d.Email == "" {
		return nil, nil
	}
	thunk := reqctx.From(p.Context).Loaders.User(p.Context, d.Email)
	return func() (interface{}, error) {
		return thunk()
	}, nil
}
