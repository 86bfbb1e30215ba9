package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvResolver(t *testing.T) {
	t.Setenv("ONTORA_TEST_SECRET", "token-value")

	env := NewEnv()
	value, err := env.Resolve(context.Background(), "ONTORA_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "token-value", value)

	_, err = env.Resolve(context.Background(), "ONTORA_DOES_NOT_EXIST")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnvResolverPrefix(t *testing.T) {
	t.Setenv("ONTORA_SEMGREP_APP_TOKEN", "prefixed")

	env := &Env{Prefix: "ONTORA_"}
	value, err := env.Resolve(context.Background(), SemgrepToken)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", value)
}

func TestOptional(t *testing.T) {
	static := Static{SlackBotToken: "xoxb-123"}

	value, err := Optional(context.Background(), static, SlackBotToken)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-123", value)

	// Absent optional secrets resolve to empty without error.
	value, err = Optional(context.Background(), static, SemgrepToken)
	require.NoError(t, err)
	assert.Empty(t, value)
}
