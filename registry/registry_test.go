package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "single pair",
			input: "device1:token-123",
			want:  map[string]string{"device1": "token-123"},
		},
		{
			name:  "multiple pairs with whitespace",
			input: " device1 : token-123 , cam2:secret ",
			want:  map[string]string{"device1": "token-123", "cam2": "secret"},
		},
		{
			name:  "malformed pair skipped",
			input: "device1:token-123,garbage,cam2:secret",
			want:  map[string]string{"device1": "token-123", "cam2": "secret"},
		},
		{
			name:  "token containing colon keeps remainder",
			input: "device1:tok:en",
			want:  map[string]string{"device1": "tok:en"},
		},
		{
			name:  "empty string",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "only separators",
			input: " , , ",
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Parse(tt.input)
			require.Equal(t, len(tt.want), reg.Len())
			for id, token := range tt.want {
				got, ok := reg.Lookup(id)
				require.True(t, ok, "device %q should be registered", id)
				assert.Equal(t, token, got)
			}
		})
	}
}

func TestRegistryAuthorize(t *testing.T) {
	reg := Parse("device1:token-123,cam2:secret")

	assert.True(t, reg.Authorize("device1", "token-123"))
	assert.True(t, reg.Authorize("cam2", "secret"))

	// Wrong token and unknown device must both fail, indistinguishably.
	assert.False(t, reg.Authorize("device1", "wrong"))
	assert.False(t, reg.Authorize("ghost", "token-123"))
	assert.False(t, reg.Authorize("device1", "secret"))

	// Empty claims never pass.
	assert.False(t, reg.Authorize("", "token-123"))
	assert.False(t, reg.Authorize("device1", ""))
	assert.False(t, reg.Authorize("", ""))
}

func TestEmptyRegistryRejectsEverything(t *testing.T) {
	reg := Parse("")
	assert.False(t, reg.Authorize("device1", "token-123"))
	assert.Empty(t, reg.Devices())
}

func TestDevicesSorted(t *testing.T) {
	reg := Parse("zeta:1,alpha:2,mid:3")
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Devices())
}
