package accounts

import (
	"crypto/rand"
	"math/big"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
)

// OTPLength is the number of digits in a verification code.
const OTPLength = 6

var otpRange = big.NewInt(900000)

// GenerateOTP returns a 6 digit numeric code drawn from crypto/rand,
// uniform over [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to generate verification code")
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
