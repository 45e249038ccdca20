package scalars

import (
	"sort"

	"github.com/graphql-go/graphql"

	"fleet/internal/apperr"
)

// RejectInvalid — первый middleware любого поля с аргументами: аргумент,
// не прошедший разбор скаляра, превращается в InvalidInput с текстом скаляра.
func RejectInvalid(next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		names := make([]string, 0, len(p.Args))
		for name := range p.Args {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if inv := findInvalid(p.Args[name]); inv != nil {
				return nil, apperr.InvalidInput(inv.Err.Error()).With("argument", name)
			}
		}
		return next(p)
	}
}

func findInvalid(v any) *Invalid {
	switch x := v.(type) {
	case *Invalid:
		return x
	case []interface{}:
		for _, item := range x {
			if inv := findInvalid(item); inv != nil {
				return inv
			}
		}
	case map[string]interface{}:
		for _, item := range x {
			if inv := findInvalid(item); inv != nil {
				return inv
			}
		}
	}
	return nil
}
