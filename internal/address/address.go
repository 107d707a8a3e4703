package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"
)

const (
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	bech32Charset  = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
)

var (
	ErrEmpty     = errors.New("address is empty")
	ErrMalformed = errors.New("address is malformed")
	ErrChecksum  = errors.New("address checksum mismatch")
)

// Split separates a pool username into its address and optional worker
// name ("addr.worker").
func Split(user string) (addr, worker string) {
	user = strings.TrimSpace(user)
	if i := strings.IndexByte(user, '.'); i >= 0 {
		return user[:i], user[i+1:]
	}
	return user, ""
}

// Validate performs an offline sanity check of a mining address before it is
// saved. Legacy P2PKH addresses get a full Base58Check verification; other
// forms are checked against their alphabet and length only.
func Validate(user string) error {
	addr, _ := Split(user)
	if addr == "" {
		return ErrEmpty
	}

	lower := strings.ToLower(addr)
	switch {
	case strings.HasPrefix(lower, "bc1") || strings.HasPrefix(lower, "tb1"):
		return validateBech32(addr, lower)
	case addr[0] == '1':
		if _, err := script.NewAddressFromString(addr); err != nil {
			return fmt.Errorf("%w: %v", ErrChecksum, err)
		}
		return nil
	default:
		return validateBase58(addr)
	}
}

func validateBech32(addr, lower string) error {
	if addr != lower && addr != strings.ToUpper(addr) {
		return fmt.Errorf("%w: mixed case", ErrMalformed)
	}
	if len(addr) < 14 || len(addr) > 90 {
		return fmt.Errorf("%w: length %d", ErrMalformed, len(addr))
	}
	data := lower[strings.LastIndexByte(lower, '1')+1:]
	for _, c := range data {
		if !strings.ContainsRune(bech32Charset, c) {
			return fmt.Errorf("%w: invalid character %q", ErrMalformed, c)
		}
	}
	return nil
}

func validateBase58(addr string) error {
	if len(addr) < 25 || len(addr) > 35 {
		return fmt.Errorf("%w: length %d", ErrMalformed, len(addr))
	}
	for _, c := range addr {
		if !strings.ContainsRune(base58Alphabet, c) {
			return fmt.Errorf("%w: invalid character %q", ErrMalformed, c)
		}
	}
	return nil
}
