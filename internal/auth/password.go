package auth

import "golang.org/x/crypto/bcrypt"

// passwordCost is the bcrypt work factor for new hashes. Digests embed their
// own cost, so raising it later only requires a rehash on next login.
const passwordCost = 12

// HashPassword returns a salted bcrypt digest of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored digest. The
// comparison is constant-time within bcrypt.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordNeedsRehash reports whether the digest was produced with a weaker
// cost than the current one.
func PasswordNeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < passwordCost
}
