package scalars

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/kinds"

	"fleet/internal/token"
	"fleet/internal/validate"
)

// TypeError — значение не прошло проверку формата скаляра.
type TypeError struct {
	Scalar  string
	Message string
}

func (e *TypeError) Error() string { return e.Message }

func typeErrorf(scalar, format string, args ...any) *TypeError {
	return &TypeError{Scalar: scalar, Message: fmt.Sprintf(format, args...)}
}

// Scalar — пользовательский скаляр с явными ошибками во всех трёх направлениях.
type Scalar struct {
	Name         string
	Description  string
	Serialize    func(value any) (any, error)
	ParseValue   func(value any) (any, error)
	ParseLiteral func(value ast.Value) (any, error)

	once sync.Once
	gql  *graphql.Scalar
}

// Invalid — значение аргумента, которое не разобралось. graphql-go не даёт
// вернуть ошибку из парсера, поэтому её несёт маркер до RejectInvalid.
type Invalid struct {
	Err error
}

// GraphQL собирает скаляр graphql-go (один экземпляр на схему). Ошибка сериализации даёт null.
func (s *Scalar) GraphQL() *graphql.Scalar {
	s.once.Do(func() { s.gql = s.build() })
	return s.gql
}

func (s *Scalar) build() *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        s.Name,
		Description: s.Description,
		Serialize: func(value interface{}) interface{} {
			out, err := s.Serialize(value)
			if err != nil {
				return nil
			}
			return out
		},
		ParseValue: func(value interface{}) interface{} {
			out, err := s.ParseValue(value)
			if err != nil {
				return &Invalid{Err: err}
			}
			return out
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			out, err := s.ParseLiteral(valueAST)
			if err != nil {
				return &Invalid{Err: err}
			}
			return out
		},
	})
}

func kindOf(v ast.Value) string {
	if v == nil {
		return "null"
	}
	return v.GetKind()
}

// stringScalar: один предикат для всех трёх функций, результат: строка без пробелов по краям.
func stringScalar(name, description, noun string, check func(string) error) *Scalar {
	parse := func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			if p, isPtr := value.(*string); isPtr && p != nil {
				s, ok = *p, true
			}
		}
		if !ok {
			return nil, check(fmt.Sprint(value))
		}
		if err := check(s); err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil
	}
	return &Scalar{
		Name:        name,
		Description: description,
		Serialize:   parse,
		ParseValue:  parse,
		ParseLiteral: func(v ast.Value) (any, error) {
			sv, ok := v.(*ast.StringValue)
			if !ok || kindOf(v) != kinds.StringValue {
				return nil, typeErrorf(name,
					"Only string values are acceptable as %s, but this field is type: %s", noun, kindOf(v))
			}
			return parse(sv.Value)
		},
	}
}

// intScalar: целое не меньше min.
func intScalar(name, description, noun string, min int, rule string) *Scalar {
	check := func(value any) (any, error) {
		n, ok := toInt(value)
		if !ok || n < min {
			return nil, typeErrorf(name, "Must be an integer value %s: %v", rule, value)
		}
		return n, nil
	}
	return &Scalar{
		Name:        name,
		Description: description,
		Serialize:   check,
		ParseValue:  check,
		ParseLiteral: func(v ast.Value) (any, error) {
			iv, ok := v.(*ast.IntValue)
			if !ok || kindOf(v) != kinds.IntValue {
				return nil, typeErrorf(name,
					"Only integer values are acceptable as %s, but this field is type: %s", noun, kindOf(v))
			}
			return check(json.Number(iv.Value))
		},
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false
		}
		return int(v), true
	case uint:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return toInt(n)
	case *int:
		if v == nil {
			return 0, false
		}
		return *v, true
	}
	return 0, false
}

var Email = stringScalar("Email",
	"Ensures a value is in the proper format for an email address",
	"email addresses",
	func(s string) error {
		if !validate.IsEmail(s) {
			return typeErrorf("Email", "The email is not in a valid format: '%s'", s)
		}
		return nil
	})

var Password = stringScalar("Password",
	"Ensures a value is in the proper format for a password",
	"passwords",
	func(s string) error {
		if !validate.IsPassword(s) {
			return &TypeError{Scalar: "Password", Message: validate.PasswordRules}
		}
		return nil
	})

// Jwt проверяет только форму и exp: подпись проверяет verifyToken.
var Jwt = stringScalar("Jwt",
	"Ensures a value is in the proper format to be a JWT access token",
	"JWTs",
	func(s string) error {
		if _, ok := token.Decode(s); !ok {
			return typeErrorf("Jwt", "The JWT is not in a valid format: '%s'", s)
		}
		if token.IsExpired(s, "") {
			return typeErrorf("Jwt", "The JWT has expired")
		}
		return nil
	})

var Semver = stringScalar("Semver",
	"Ensures a value is in the proper format for semantic version numbers",
	"semantic versions",
	func(s string) error {
		if !validate.IsSemver(s) {
			return typeErrorf("Semver", "The semver is not in a valid format: '%s'", s)
		}
		return nil
	})

var PositiveInt = intScalar("PositiveInt",
	"Ensures a value is in a positive integer",
	"positive int values", 1, "greater than zero")

var NonNegativeInt = intScalar("NonNegativeInt",
	"Ensures a value is in a non-negative integer",
	"non-negative int values", 0, "greater than or equal to zero")
