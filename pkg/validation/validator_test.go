package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	File    string  `yaml:"file" validate:"required"`
	Top     string  `yaml:"top" validate:"omitempty,cellname"`
	Mode    string  `yaml:"mode" validate:"oneof=hierarchical flatten"`
	Workers int     `yaml:"workers" validate:"gte=0,lte=64"`
	Tol     float64 `yaml:"tolerance" validate:"gte=0"`
	Nested  struct {
		Level string `yaml:"level" validate:"oneof=debug info"`
	} `yaml:"log"`
}

func validSample() sample {
	s := sample{File: "a.sp", Top: "inv", Mode: "flatten", Workers: 4}
	s.Nested.Level = "info"
	return s
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*sample)
		wantErr string
	}{
		{"valid", func(*sample) {}, ""},
		{"empty top allowed", func(s *sample) { s.Top = "" }, ""},
		{"missing file", func(s *sample) { s.File = "" }, "file: field is required"},
		{"bad mode", func(s *sample) { s.Mode = "flat" }, "mode: must be one of [hierarchical flatten]"},
		{"too many workers", func(s *sample) { s.Workers = 65 }, "workers: must not exceed 64"},
		{"negative workers", func(s *sample) { s.Workers = -1 }, "workers: must be at least 0"},
		{"negative tolerance", func(s *sample) { s.Tol = -1 }, "tolerance: must be at least 0"},
		{"top with space", func(s *sample) { s.Top = "my cell" }, "top: cell name"},
		{"nested field uses yaml path", func(s *sample) { s.Nested.Level = "trace" }, "log.level: must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)
			err := ValidateStruct(&s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStruct_Nil(t *testing.T) {
	assert.Error(t, ValidateStruct(nil))
}

func TestValidateCellName(t *testing.T) {
	valid := []string{"inv", "INV_X1", "top/sub", "a.b", "cell<3>"}
	for _, name := range valid {
		assert.NoError(t, ValidateCellName(name), name)
	}
	invalid := []string{"", "a b", "w=1", "'q'", "{x}", "f(x)", "tab\tname"}
	for _, name := range invalid {
		assert.Error(t, ValidateCellName(name), name)
	}
}
