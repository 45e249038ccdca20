package gql

import (
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"fleet/internal/directives"
	"fleet/internal/listing"
	"fleet/internal/models"
	"fleet/internal/scalars"
)

// Schema — GraphQL-схема приложения поверх DataSource.
type Schema struct {
	schema graphql.Schema
	ds     DataSource
	now    func() time.Time
}

func NewSchema(ds DataSource) (*Schema, error) {
	s := &Schema{ds: ds, now: time.Now}

	permissionType := s.definePermissionEnum()
	deviceSortType := s.defineDeviceSortEnum()
	decodedJwtType := s.defineDecodedJwtType()
	userType := s.defineUserType(permissionType)
	deviceType := s.defineDeviceType()

	// User.devices и Device.user ссылаются друг на друга
	userType.AddFieldConfig("devices", &graphql.Field{
		Type:    graphql.NewList(deviceType),
		Resolve: s.resolveUserDevices,
	})
	deviceType.AddFieldConfig("user", &graphql.Field{
		Type:    userType,
		Resolve: s.resolveDeviceUser,
	})

	listArgs := func(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{
			"sortBy":    &graphql.ArgumentConfig{Type: deviceSortType, Description: "Column to sort the devices by"},
			"ascending": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
			"limit":     &graphql.ArgumentConfig{Type: scalars.NonNegativeInt.GraphQL(), Description: "Page size, 0 for all"},
			"offset":    &graphql.ArgumentConfig{Type: scalars.NonNegativeInt.GraphQL()},
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Description: "Retrieves the full list of all users",
				Resolve:     guard(s.resolveUsers, directives.IsAdmin),
			},
			"devices": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(deviceType))),
				Description: "Retrieves the full list of all devices",
				Args:        listArgs(nil),
				Resolve:     guard(s.resolveDevices, directives.IsAdmin),
			},
			"getDevicesByEmail": &graphql.Field{
				Type:        graphql.NewList(deviceType),
				Description: "Retrieves the devices associated with a given user",
				Args: listArgs(graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalars.Email.GraphQL())},
				}),
				Resolve: guard(s.resolveDevicesByEmail, directives.IsEmailUser),
			},
			"getUserByEmail": &graphql.Field{
				Type:        userType,
				Description: "Retrieves a user record by their unique email address",
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalars.Email.GraphQL())},
				},
				Resolve: guard(s.resolveUserByEmail, directives.IsAdmin),
			},
			"getDeviceById": &graphql.Field{
				Type:        deviceType,
				Description: "Retrieves a device record by its unique ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalars.PositiveInt.GraphQL())},
				},
				Resolve: guard(s.resolveDeviceByID, directives.IsDeviceUser),
			},
			"getExpiredUsers": &graphql.Field{
				Type:        graphql.NewList(userType),
				Description: "Retrieves a list of users whose subscription has ended",
				Resolve:     guard(s.resolveExpiredUsers, directives.IsAdmin),
			},
			"getLatestFirmwareVersion": &graphql.Field{
				Type:        scalars.Semver.GraphQL(),
				Description: "Retrieves the latest firmware version",
				Resolve:     guard(s.resolveLatestVersion),
			},
			"verifyToken": &graphql.Field{
				Type:        decodedJwtType,
				Description: "Validates an access token, making sure it was issued by this server and hasn't expired",
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalars.Jwt.GraphQL())},
				},
				Resolve: guard(s.resolveVerifyToken),
			},
			"me": &graphql.Field{
				Type:        userType,
				Description: "The authenticated user",
				Resolve:     guard(s.resolveMe, directives.IsAuthenticated),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type:        scalars.Jwt.GraphQL(),
				Description: "Registered users authenticate with their email and password",
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalars.Email.GraphQL())},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(scalars.Password.GraphQL())},
				},
				Resolve: guard(s.resolveLogin),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	s.schema = schema
	return s, nil
}

// guard: сначала проверка аргументов, затем проверки доступа в заданном порядке.
func guard(resolve graphql.FieldResolveFn, checks ...directives.Check) graphql.FieldResolveFn {
	mws := []directives.Middleware{scalars.RejectInvalid}
	for _, c := range checks {
		mws = append(mws, directives.Gate(c))
	}
	return directives.Chain(resolve, mws...)
}

func (s *Schema) definePermissionEnum() *graphql.Enum {
	return graphql.NewEnum(graphql.EnumConfig{
		Name: "Permission",
		Values: graphql.EnumValueConfigMap{
			models.PermissionDelete: &graphql.EnumValueConfig{Value: models.PermissionDelete},
			models.PermissionUpdate: &graphql.EnumValueConfig{Value: models.PermissionUpdate},
		},
	})
}

func (s *Schema) defineDeviceSortEnum() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, f := range []listing.SortField{listing.ByName, listing.ByUser, listing.ByUpdated, listing.ByVersion, listing.ByStatus} {
		values[string(f)] = &graphql.EnumValueConfig{Value: string(f)}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:   "DeviceSort",
		Values: values,
	})
}

func (s *Schema) defineDecodedJwtType() *graphql.Object {
	str := func(get func(*models.DecodedJwt) string) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			d, ok := p.Source.(*models.DecodedJwt)
			if !ok || get(d) == "" {
				return nil, nil
			}
			return get(d), nil
		}
	}
	// в токене секунды, наружу — миллисекунды
	millis := func(get func(*models.DecodedJwt) *int64) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			d, ok := p.Source.(*models.DecodedJwt)
			if !ok || get(d) == nil {
				return nil, nil
			}
			return float64(*get(d) * 1000), nil
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "DecodedJwt",
		Fields: graphql.Fields{
			"iss": &graphql.Field{Type: graphql.String, Description: "The issuer of the token",
				Resolve: str(func(d *models.DecodedJwt) string { return d.Iss })},
			"aud": &graphql.Field{Type: graphql.String, Description: "The intended audience of the token",
				Resolve: str(func(d *models.DecodedJwt) string { return d.Aud })},
			"sub": &graphql.Field{Type: graphql.String, Description: "The subject of the token",
				Resolve: str(func(d *models.DecodedJwt) string { return d.Sub })},
			"exp": &graphql.Field{Type: graphql.Float, Description: "The expiration for the token",
				Resolve: millis(func(d *models.DecodedJwt) *int64 { return d.Exp })},
			"iat": &graphql.Field{Type: graphql.Float, Description: "The time the token was issued",
				Resolve: millis(func(d *models.DecodedJwt) *int64 { return d.Iat })},
		},
	})
}

func userField(get func(*models.User) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		u, ok := p.Source.(*models.User)
		if !ok || u == nil {
			return nil, nil
		}
		return get(u), nil
	}
}

func (s *Schema) defineUserType(permissionType *graphql.Enum) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"email": &graphql.Field{
				Type:    graphql.NewNonNull(scalars.Email.GraphQL()),
				Resolve: userField(func(u *models.User) interface{} { return u.Email }),
			},
			"permissions": &graphql.Field{
				Type:    graphql.NewList(permissionType),
				Resolve: userField(func(u *models.User) interface{} { return u.Permissions }),
			},
			"canPerformUpdates": &graphql.Field{
				Type:    graphql.Boolean,
				Resolve: userField(func(u *models.User) interface{} { return u.CanPerformUpdates() }),
			},
			"isSubscriptionExpired": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Whether the user's device subscription has ended",
				Resolve:     userField(func(u *models.User) interface{} { return u.IsSubscriptionExpired }),
			},
		},
	})
}

func deviceField(get func(*models.Device) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		d, ok := p.Source.(*models.Device)
		if !ok || d == nil {
			return nil, nil
		}
		return get(d), nil
	}
}

func (s *Schema) defineDeviceType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Device",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.NewNonNull(scalars.PositiveInt.GraphQL()),
				Resolve: deviceField(func(d *models.Device) interface{} { return d.ID }),
			},
			"name": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: deviceField(func(d *models.Device) interface{} { return d.Name }),
			},
			"version": &graphql.Field{
				Type:        scalars.Semver.GraphQL(),
				Description: "The device's firmware version",
				Resolve: deviceField(func(d *models.Device) interface{} {
					if d.Version == "" {
						return nil
					}
					return d.Version
				}),
			},
			"isCurrent": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Whether this device is on the most current firmware version",
				Resolve:     deviceField(func(d *models.Device) interface{} { return d.IsCurrent }),
			},
			"inProgress": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Whether this device is currently being updated",
				Resolve:     deviceField(func(d *models.Device) interface{} { return d.InProgress }),
			},
			"lastUpdatedAt": &graphql.Field{
				Type: graphql.Float,
				Resolve: deviceField(func(d *models.Device) interface{} {
					if d.LastUpdatedAt == nil {
						return nil
					}
					return float64(d.LastUpdatedAt.UnixMilli())
				}),
			},
			"lastUpdated": &graphql.Field{
				Type:        graphql.String,
				Description: "Time since the last finished update within a day, otherwise its date (YYYY/MM/DD)",
				Resolve: deviceField(func(d *models.Device) interface{} {
					if d.LastUpdatedAt == nil {
						return nil
					}
					return listing.RecentOrDate(*d.LastUpdatedAt, s.now())
				}),
			},
		},
	})
}
