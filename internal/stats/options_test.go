package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	broken := []func(*Options){
		func(o *Options) { o.TopN = 0 },
		func(o *Options) { o.BucketStep = 0 },
		func(o *Options) { o.DensityStart = -5 },
		func(o *Options) { o.DensityEnd = 1445 },
		func(o *Options) { o.DensityStart, o.DensityEnd = 600, 540 },
		func(o *Options) { o.DensityStart = 421 },
		func(o *Options) { o.DensityEnd = 1259 },
	}
	for i, mutate := range broken {
		opts := DefaultOptions()
		mutate(&opts)
		require.Error(t, opts.Validate(), "case %d", i)
	}
}
