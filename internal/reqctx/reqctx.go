package reqctx

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"fleet/internal/loader"
	"fleet/internal/logs"
	"fleet/internal/models"
	"fleet/internal/token"
	"fleet/internal/validate"
)

// RequestContext — всё, что резолверы и директивы получают на один запрос.
// User == nil для анонимного запроса.
type RequestContext struct {
	User    *models.User
	Token   string
	Loaders *loader.Loaders
	Log     *logrus.Entry
}

type ctxKey struct{}

func With(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From никогда не возвращает nil: без контекста запроса отдаёт пустой анонимный.
func From(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(ctxKey{}).(*RequestContext); ok && rc != nil {
		return rc
	}
	return &RequestContext{Log: logs.FromContext(ctx)}
}

// BearerToken достаёт токен из "Authorization: Bearer <jwt>"; "" если заголовка нет или он кривой.
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

// Builder собирает RequestContext для входящего запроса.
type Builder struct {
	Source loader.Source
	Secret string
}

// Build: токен проверяется по подписи и сроку, затем ищется пользователь (с устройствами).
// Невалидный токен или неизвестный пользователь дают анонимный контекст, не ошибку.
// Ошибка возвращается только если упал сам поиск пользователя.
func (b *Builder) Build(r *http.Request) (*RequestContext, error) {
	ctx := r.Context()
	rc := &RequestContext{
		Loaders: loader.New(b.Source),
		Log:     logs.FromContext(ctx),
	}

	raw := BearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return rc, nil
	}
	claims, err := token.Validate(raw, b.Secret)
	if err != nil {
		rc.Log.WithError(err).Debug("bearer token rejected, continuing anonymously")
		return rc, nil
	}
	email, _ := claims.GetSubject()
	if !validate.IsEmail(email) {
		rc.Log.WithField("sub", email).Debug("bearer token subject is not an email")
		return rc, nil
	}

	user, err := b.Source.FindUserByEmail(ctx, email, true)
	if err != nil {
		return nil, err
	}
	if user == nil {
		rc.Log.WithField("email", email).Debug("bearer token for unknown user")
		return rc, nil
	}
	rc.User = user
	rc.Token = raw
	rc.Log = rc.Log.WithField("user", email)
	return rc, nil
}
