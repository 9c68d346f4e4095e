package workpool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	got, err := Collect(context.Background(), 2, nil, items, func(ctx context.Context, i int) (string, int, error) {
		return fmt.Sprintf("k%d", i), i * i, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, 16, got["k4"])
}

func TestCollect_Error(t *testing.T) {
	errBoom := errors.New("boom")
	got, err := Collect(context.Background(), 1, nil, []int{1, 2, 3}, func(ctx context.Context, i int) (string, int, error) {
		if i == 2 {
			return "", 0, errBoom
		}
		return fmt.Sprint(i), i, nil
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, got)
}

func TestCollect_Empty(t *testing.T) {
	got, err := Collect(context.Background(), 4, nil, nil, func(ctx context.Context, s string) (string, string, error) {
		return s, s, nil
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}
