package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var ErrNoClientIP = errors.New("no client IP on request")

// Bucket is the resolved caller identity for one request: an authenticated
// user id, or an anonymous session id with its expiry. Exactly one side is
// set.
type Bucket struct {
	UserID    string
	SessionID string
	Expiry    time.Time
}

func (b Bucket) Authenticated() bool { return b.UserID != "" }

// Resolver derives a Bucket from a request. Every route shares one
// precedence policy: an explicit user id wins, then the session cookie,
// then a freshly minted anonymous session.
type Resolver struct {
	CookieName string
	Salt       string
	TTL        time.Duration
	Secure     bool
	Now        func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve returns the caller's existing identity without creating one.
// ok is false when neither a user id nor a session cookie is present.
func (r *Resolver) Resolve(c echo.Context, userID string) (Bucket, bool) {
	if userID != "" {
		return Bucket{UserID: userID}, true
	}
	if ck, err := c.Cookie(r.CookieName); err == nil && ck.Value != "" {
		return Bucket{SessionID: ck.Value}, true
	}
	return Bucket{}, false
}

// Mint creates a fresh anonymous session and writes it back as a cookie on
// the response. The client IP is a hard precondition for anonymous flows.
func (r *Resolver) Mint(c echo.Context) (Bucket, error) {
	ip := ClientIP(c.Request())
	if ip == "" {
		return Bucket{}, ErrNoClientIP
	}

	now := r.now()
	sessionID := r.sessionID(ip, now)
	expiry := now.Add(r.TTL)

	c.SetCookie(&http.Cookie{
		Name:     r.CookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   r.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return Bucket{SessionID: sessionID, Expiry: expiry}, nil
}

// sessionID is a salted hash of the client IP with the last three base-36
// characters of the current millisecond timestamp appended, so the id's
// recency can be bounded to a time window.
func (r *Resolver) sessionID(ip string, now time.Time) string {
	sum := sha256.Sum256([]byte(r.Salt + ip))
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	if len(ts) > 3 {
		ts = ts[len(ts)-3:]
	}
	return hex.EncodeToString(sum[:]) + ts
}

// ClientIP returns the first hop of the X-Forwarded-For header, or "".
func ClientIP(req *http.Request) string {
	xff := req.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(xff, ",")[0])
}

// UserFromToken extracts the authenticated user id from the auth provider's
// bearer token. Returns "" when the request carries no usable token.
func UserFromToken(c echo.Context, secret []byte) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return ""
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
