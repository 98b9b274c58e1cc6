package actiontable_test

import (
	"context"
	"testing"

	"github.com/aretw0/actionhost/pkg/actiontable"
	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, io *actionio.IO) (any, error) { return nil, nil }

func TestTable_RegisterAndLookup(t *testing.T) {
	table := actiontable.New()
	require.NoError(t, table.Register("greet", noop))

	action, ok := table.Lookup("greet")
	assert.True(t, ok)
	assert.NotNil(t, action)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)
}

func TestTable_Register_DuplicateRejected(t *testing.T) {
	table := actiontable.New()
	require.NoError(t, table.Register("greet", noop))

	err := table.Register("greet", noop)
	require.Error(t, err)
	var dup *actiontable.ErrDuplicateAction
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "greet", dup.Name)
}

func TestTable_Names_Sorted(t *testing.T) {
	table := actiontable.New()
	require.NoError(t, table.Register("zeta", noop))
	require.NoError(t, table.Register("alpha", noop))

	assert.Equal(t, []string{"alpha", "zeta"}, table.Names())
}
