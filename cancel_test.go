package onionfetch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelSource(t *testing.T) {
	src := NewCancelSource()
	assert.Nil(t, src.Token.Reason())
	assert.NoError(t, src.Token.Err())
	select {
	case <-src.Token.Done():
		t.Fatal("token done before cancel")
	default:
	}

	src.Cancel("user abort")
	src.Cancel("second")
	<-src.Token.Done()
	require.NotNil(t, src.Token.Reason())
	assert.Equal(t, "user abort", src.Token.Reason().Message)
	assert.EqualError(t, src.Token.Err(), "Cancel: user abort")
}

func TestIsCancel(t *testing.T) {
	assert.True(t, IsCancel(&Cancel{}))
	assert.True(t, IsCancel(fmt.Errorf("wrapped: %w", &Cancel{Message: "x"})))
	assert.False(t, IsCancel(errors.New("Cancel")))
	assert.False(t, IsCancel(&RequestError{Type: ErrorTypeTimeout}))
	assert.False(t, IsCancel(nil))
	assert.EqualError(t, &Cancel{}, "Cancel")
}
