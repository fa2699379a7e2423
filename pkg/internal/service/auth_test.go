package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/queue"
)

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  types.RegisterRequest
		want *service.Error
	}{
		{"missing email", types.RegisterRequest{Password: "x"}, service.ErrMissingEmail},
		{"bad email", types.RegisterRequest{Email: "nope", Password: "x"}, service.ErrInvalidEmail},
		{"missing password", types.RegisterRequest{Email: "a@b.com"}, service.ErrMissingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Auth.Register(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := e.svc.Auth.Register(ctx, types.RegisterRequest{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	_, err = e.svc.Auth.Register(ctx, types.RegisterRequest{Email: "a@b.com", Password: "y"})
	requireCode(t, err, http.StatusBadRequest, "Already exist")
}

func TestRegisterEnqueuesWelcome(t *testing.T) {
	e := newEnv(t)

	user, err := e.svc.Auth.Register(context.Background(), types.RegisterRequest{Email: "bob@dylan.com", Password: "x"})
	require.NoError(t, err)

	require.Equal(t, []string{queue.TopicWelcome}, e.jobs.topics)

	env, err := queue.ParseWelcomeJob(e.jobs.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, user.ID, env.Payload.UserID)

	stored, err := e.dir.FindUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "x", stored.Password)
}

func TestTwoSignInsGiveIndependentTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	userID, first := e.signUp(t, "bob@dylan.com")

	second, err := e.svc.Auth.SignIn(ctx, "bob@dylan.com", "toto1234!")
	require.NoError(t, err)
	require.NotEqual(t, first, second.Token)

	for _, tok := range []string{first, second.Token} {
		me, err := e.svc.Auth.Me(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, userID, me.ID)
		assert.Equal(t, "bob@dylan.com", me.Email)
	}

	require.NoError(t, e.svc.Auth.SignOut(ctx, first))

	_, err = e.svc.Auth.Me(ctx, first)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = e.svc.Auth.Me(ctx, second.Token)
	require.NoError(t, err)

	require.ErrorIs(t, e.svc.Auth.SignOut(ctx, first), service.ErrUnauthorized)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.signUp(t, "bob@dylan.com")

	for _, c := range [][2]string{
		{"bob@dylan.com", "wrong"},
		{"nobody@dylan.com", "toto1234!"},
		{"", "toto1234!"},
		{"bob@dylan.com", ""},
	} {
		_, err := e.svc.Auth.SignIn(ctx, c[0], c[1])
		requireCode(t, err, http.StatusUnauthorized, "Unauthorized")
	}
}

func TestSessionForDeletedUserIsUnauthorized(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.kv.Set(ctx, "auth_orphan", []byte(`"01HZZZZZZZZZZZZZZZZZZZZZZZ"`), 0))

	_, err := e.svc.Auth.Me(ctx, "orphan")
	require.ErrorIs(t, err, service.ErrUnauthorized)
}
