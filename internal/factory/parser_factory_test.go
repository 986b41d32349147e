package factory_test

import (
	_ "Go2FlowTag/internal/engine/impl/vpc" // Registers the default format
	"Go2FlowTag/internal/factory"
	"Go2FlowTag/internal/model"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_Default(t *testing.T) {
	for _, name := range []string{"default", "DEFAULT", "Default"} {
		p, err := factory.Create(name)
		require.NoError(t, err, name)
		assert.Equal(t, "default", p.Format())
	}
}

func TestCreate_Unknown(t *testing.T) {
	p, err := factory.Create("ipfix")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "ipfix")
}

func TestRegisterFormat_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		factory.RegisterFormat("Default", func() model.Parser { return nil })
	})
}

func TestFormats(t *testing.T) {
	assert.Contains(t, factory.Formats(), "default")
}
