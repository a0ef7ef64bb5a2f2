package domain

import (
	"fmt"
	"math/big"
	"strings"
)

const etherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// NextMinimumBid is the lowest price the contract accepts after price.
func NextMinimumBid(price *big.Int) *big.Int {
	if price == nil {
		return big.NewInt(1)
	}
	return new(big.Int).Add(price, big.NewInt(1))
}

// ParseEther converts a decimal ether amount ("0.015") into wei.
func ParseEther(raw string) (*big.Int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, fmt.Errorf("%w: empty price", ErrValidation)
	}
	if strings.HasPrefix(value, "-") {
		return nil, fmt.Errorf("%w: negative price %q", ErrValidation, raw)
	}
	value = strings.TrimPrefix(value, "+")

	whole, frac, hasDot := strings.Cut(value, ".")
	if hasDot && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: malformed price %q", ErrValidation, raw)
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: malformed price %q", ErrValidation, raw)
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("%w: price %q has more than %d decimals", ErrValidation, raw, etherDecimals)
	}
	if whole == "" {
		whole = "0"
	}

	digits := whole + frac + strings.Repeat("0", etherDecimals-len(frac))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: malformed price %q", ErrValidation, raw)
		}
	}

	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: malformed price %q", ErrValidation, raw)
	}
	return wei, nil
}

// FormatEther renders wei as a trimmed decimal ether amount.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}

	sign := ""
	abs := new(big.Int).Set(wei)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	whole, rem := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	frac := rem.String()
	frac = strings.Repeat("0", etherDecimals-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	return sign + whole.String() + "." + frac
}
