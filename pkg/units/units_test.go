package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWei(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"48000000", "48000000000000000000000000"},
		{"0.000000000000000001", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToWei(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToWei_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "0.0000000000000000001"} {
		_, err := ToWei(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFromWei(t *testing.T) {
	assert.Equal(t, "2750", FromWei(MustToWei("2750")))
	assert.Equal(t, "0.5", FromWei(big.NewInt(500000000000000000)))
	assert.Equal(t, "0", FromWei(nil))
}

func TestEther(t *testing.T) {
	assert.Equal(t, 0, Ether(100).Cmp(MustToWei("100")))
}
