package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/interfaces/http/dto"
	"github.com/homechef/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type call struct {
	method  string
	route   string
	url     string
	body    any
	actor   *account.Actor
	subject *uuid.UUID
}

func serve(t *testing.T, h gin.HandlerFunc, c call) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	r := gin.New()
	r.Handle(c.method, c.route, func(ctx *gin.Context) {
		if c.actor != nil {
			ctx.Set(middleware.ActorKey, *c.actor)
			ctx.Set(middleware.SubjectKey, c.actor.ID)
		}
		if c.subject != nil {
			ctx.Set(middleware.SubjectKey, *c.subject)
		}
		ctx.Next()
	}, h)

	var body bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(b))
	}
	req := httptest.NewRequest(c.method, c.url, &body)
	if body.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func actorOf(role account.Role) *account.Actor {
	return &account.Actor{ID: uuid.New(), Role: role}
}
