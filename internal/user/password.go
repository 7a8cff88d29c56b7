package user

import "golang.org/x/crypto/bcrypt"

// maxPasswordBytes is bcrypt's input limit; longer inputs are rejected rather
// than silently truncated.
const maxPasswordBytes = 72

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
