package address

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"legacy p2pkh", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", nil},
		{"legacy with worker", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa.rig01", nil},
		{"legacy bad checksum", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb", ErrChecksum},
		{"segwit", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", nil},
		{"segwit upper", "BC1QAR0SRRR7XFKVY5L643LYDNW9RE59GTZZWF5MDQ", nil},
		{"segwit mixed case", "bc1QAR0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", ErrMalformed},
		{"segwit bad char", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdb", ErrMalformed},
		{"p2sh", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", nil},
		{"base58 bad char", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNL0", ErrMalformed},
		{"empty", "  ", ErrEmpty},
		{"worker only", ".rig01", ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate(%q) = %v, want nil", tt.in, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%q) = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	addr, worker := Split(" 1abc.rig.01 ")
	if addr != "1abc" || worker != "rig.01" {
		t.Errorf("Split = (%q, %q)", addr, worker)
	}
}
