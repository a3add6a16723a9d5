package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
)

func TestMidpoint(t *testing.T) {
	set := concreteSet(t)

	tests := []struct {
		name  string
		fit   model.FitResult
		value float64
		valid bool
		err   error
	}{
		{
			name:  "inside",
			fit:   model.FitResult{L: 162, K: 0.128, X0: 16.67, Converged: true},
			value: 16.67,
			valid: true,
		},
		{
			name:  "on the lower bound",
			fit:   model.FitResult{L: 162, K: 0.128, X0: 10, Converged: true},
			value: 10,
			valid: true,
		},
		{
			name:  "above the range",
			fit:   model.FitResult{L: 500, K: 0.01, X0: 80, Converged: true},
			value: 80,
			err:   common.ErrorOutOfDomain,
		},
		{
			name:  "declining below the range",
			fit:   model.FitResult{L: 100, K: -0.5, X0: 2, Converged: true},
			value: 2,
			err:   common.ErrorOutOfDomain,
		},
		{
			name: "not converged",
			fit:  model.FitResult{Evaluations: 10000},
			err:  common.ErrorNonConvergence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewMidpoint().Detect(set, tt.fit)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, model.LogisticMidpoint, res.Method)
			assert.Equal(t, tt.value, res.Value)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Nil(t, res.Knot)
		})
	}
}
