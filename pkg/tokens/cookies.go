package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Role         string
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Cookies renders the pair as the two auth cookies.
func (p *Pair) Cookies() []*http.Cookie {
	return []*http.Cookie{
		CreateCookie(AccessCookie, p.AccessToken, "/", p.AccessExp),
		CreateCookie(RefreshCookie, p.RefreshToken, "/", p.RefreshExp),
	}
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
