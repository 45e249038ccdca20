package scalars

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet/internal/apperr"
)

func jwtWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user@x.com", "exp": exp.Unix()}).
		SignedString([]byte("whatever"))
	require.NoError(t, err)
	return raw
}

func TestStringScalarsAgreeAcrossDirections(t *testing.T) {
	fresh := jwtWithExp(t, time.Now().Add(time.Hour))
	cases := []struct {
		s        *Scalar
		ok, bad  string
		badError string
	}{
		{Email, "user@x.com", "user@", "The email is not in a valid format: 'user@'"},
		{Password, "ValidPass1!", "password", "Password is not in a valid format"},
		{Semver, "1.2.3", "1.2", "The semver is not in a valid format: '1.2'"},
		{Jwt, fresh, "nope", "The JWT is not in a valid format: 'nope'"},
	}
	for _, tc := range cases {
		t.Run(tc.s.Name, func(t *testing.T) {
			for name, fn := range map[string]func(any) (any, error){
				"serialize":  tc.s.Serialize,
				"parseValue": tc.s.ParseValue,
				"parseLiteral": func(v any) (any, error) {
					return tc.s.ParseLiteral(&ast.StringValue{Kind: "StringValue", Value: v.(string)})
				},
			} {
				got, err := fn(tc.ok)
				require.NoError(t, err, name)
				assert.Equal(t, tc.ok, got, name)

				_, err = fn(tc.bad)
				require.Error(t, err, name)
				assert.Contains(t, err.Error(), tc.badError, name)
				var te *TypeError
				assert.ErrorAs(t, err, &te)
			}
		})
	}
}

func TestStringScalarRejectsWrongLiteralKind(t *testing.T) {
	_, err := Email.ParseLiteral(&ast.IntValue{Kind: "IntValue", Value: "5"})
	require.Error(t, err)
	assert.Equal(t, "Only string values are acceptable as email addresses, but this field is type: IntValue", err.Error())

	_, err = Email.ParseValue(5)
	assert.Error(t, err)
}

func TestJwtExpired(t *testing.T) {
	_, err := Jwt.ParseValue(jwtWithExp(t, time.Now().Add(-time.Minute)))
	require.Error(t, err)
	assert.Equal(t, "The JWT has expired", err.Error())
}

func TestIntScalars(t *testing.T) {
	for _, v := range []any{1, int64(7), float64(3), "x", -1, 0, 1.5} {
		_, errPos := PositiveInt.ParseValue(v)
		_, errNonNeg := NonNegativeInt.ParseValue(v)
		switch v {
		case 1, int64(7), float64(3):
			assert.NoError(t, errPos, "%v", v)
			assert.NoError(t, errNonNeg, "%v", v)
		case 0:
			assert.Error(t, errPos)
			assert.NoError(t, errNonNeg)
		default:
			assert.Error(t, errPos, "%v", v)
			assert.Error(t, errNonNeg, "%v", v)
		}
	}

	got, err := PositiveInt.ParseLiteral(&ast.IntValue{Kind: "IntValue", Value: "42"})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = PositiveInt.ParseLiteral(&ast.IntValue{Kind: "IntValue", Value: "0"})
	assert.EqualError(t, err, "Must be an integer value greater than zero: 0")

	_, err = NonNegativeInt.ParseLiteral(&ast.StringValue{Kind: "StringValue", Value: "1"})
	assert.EqualError(t, err, "Only integer values are acceptable as non-negative int values, but this field is type: StringValue")
}

func echoSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"echo": &graphql.Field{
					Type: Email.GraphQL(),
					Args: graphql.FieldConfigArgument{
						"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(Email.GraphQL())},
					},
					Resolve: RejectInvalid(func(p graphql.ResolveParams) (interface{}, error) {
						return p.Args["email"], nil
					}),
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func TestRejectInvalidThroughEngine(t *testing.T) {
	schema := echoSchema(t)

	res := graphql.Do(graphql.Params{Schema: schema, RequestString: `{ echo(email: "user@x.com") }`})
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]interface{}{"echo": "user@x.com"}, res.Data)

	res = graphql.Do(graphql.Params{Schema: schema, RequestString: `{ echo(email: "bad") }`})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "The email is not in a valid format: 'bad'", res.Errors[0].Message)
	assert.Equal(t, string(apperr.KindInvalidInput), res.Errors[0].Extensions["kind"])
	assert.Equal(t, 400, res.Errors[0].Extensions["code"])

	res = graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  `query($e: Email!) { echo(email: $e) }`,
		VariableValues: map[string]interface{}{"e": "also bad"},
	})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "not in a valid format")
}
