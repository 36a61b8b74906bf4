package smcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNew(t *testing.T) {
	r := NewRegistry()
	r.Register("MetricData", func() any { return &metricData{} })

	obj, err := r.New("MetricData")
	require.NoError(t, err)
	assert.IsType(t, &metricData{}, obj)

	// Each call constructs a fresh instance.
	other, err := r.New("MetricData")
	require.NoError(t, err)
	assert.NotSame(t, obj, other)
}

func TestRegistryUnknownShape(t *testing.T) {
	r := NewRegistry()
	_, err := r.New("Nope")
	var se *ShapeError
	require.ErrorAs(t, err, &se)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("MetricData", func() any { return &metricData{} })
	assert.Panics(t, func() {
		r.Register("MetricData", func() any { return &metricData{} })
	})
}
