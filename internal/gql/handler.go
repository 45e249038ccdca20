package gql

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/sirupsen/logrus"

	"fleet/internal/apperr"
	"fleet/internal/logs"
	"fleet/internal/models"
	"fleet/internal/reqctx"
)

// CensoredMessage заменяет текст внутренних ошибок в ответе; оригинал остаётся в логе.
const CensoredMessage = "The server encountered a problem. Please have an administrator check the logs for details"

const maxBodyBytes = 1 << 20

type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler обслуживает /graphql.
type Handler struct {
	Schema  *Schema
	Builder *reqctx.Builder
}

func NewHandler(schema *Schema, builder *reqctx.Builder) *Handler {
	return &Handler{Schema: schema, Builder: builder}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logs.FromContext(r.Context())

	req, err := parseRequest(r)
	if err != nil {
		writeErrors(w, apperr.InvalidInput(err.Error()))
		return
	}

	rc, err := h.Builder.Build(r)
	if err != nil {
		log.WithError(err).Error("request context")
		writeErrors(w, apperr.Internal(CensoredMessage, err))
		return
	}

	res := h.Schema.Execute(reqctx.With(r.Context(), rc), req.Query, req.Variables, req.OperationName)
	status := Finalize(res, rc.Log)
	models.WriteJSON(w, status, res)
}

func parseRequest(r *http.Request) (*Request, error) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return nil, errors.New("Variables are invalid JSON")
			}
		}
	case http.MethodPost:
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct == "application/graphql" {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				return nil, err
			}
			req.Query = string(body)
		} else if err := models.ReadJSON(r, maxBodyBytes, &req); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("GraphQL only supports GET and POST requests")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("Must provide query string")
	}
	return &req, nil
}

// Finalize проставляет extensions.code/kind каждой ошибке, цензурирует внутренние
// и возвращает HTTP-статус ответа (наибольший код среди ошибок).
// При наличии ошибок data не отдаётся.
func Finalize(res *graphql.Result, log *logrus.Entry) int {
	if log == nil {
		log = logrus.NewEntry(logs.Logger)
	}
	status := http.StatusOK
	for i := range res.Errors {
		e := &res.Errors[i]
		cause := causeOf(*e)

		kind := apperr.KindInvalidInput // ошибки разбора и валидации запроса
		if cause != nil {
			kind = apperr.KindOf(cause)
		}
		code := kind.Status()

		if kind == apperr.KindInternal {
			log.WithError(cause).WithField("path", e.Path).Error(e.Message)
			e.Message = CensoredMessage
			e.Extensions = map[string]interface{}{}
		} else {
			log.WithField("code", code).WithField("path", e.Path).Info(e.Message)
			if e.Extensions == nil {
				e.Extensions = map[string]interface{}{}
			}
		}
		e.Extensions["code"] = code
		e.Extensions["kind"] = string(kind)

		if code > status {
			status = code
		}
	}
	if len(res.Errors) > 0 {
		res.Data = nil
	}
	return status
}

// causeOf достаёт ошибку резолвера из обёртки graphql-go; nil означает ошибку самого запроса.
func causeOf(e gqlerrors.FormattedError) error {
	switch err := e.OriginalError().(type) {
	case nil:
		return nil
	case *gqlerrors.Error:
		return err.OriginalError
	default:
		return err
	}
}

func writeErrors(w http.ResponseWriter, errs ...error) {
	res := &graphql.Result{}
	for _, err := range errs {
		res.Errors = append(res.Errors, gqlerrors.FormatError(err))
	}
	status := Finalize(res, nil)
	models.WriteJSON(w, status, res)
}
