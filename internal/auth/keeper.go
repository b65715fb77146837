// Package auth keeps each session's bearer token and exposes the claims the
// storefront needs (name, roles). Tokens are decoded without signature
// verification: the backend is the authority, this side only reads what it
// was handed, and drops tokens that are expired or unreadable.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/levelup-gamer/storefront/internal/storage"
)

const tokenKeyPrefix = "levelup_jwt:"

const AdminRole = "ROLE_ADMIN"

// Claims is the token payload issued by the backend.
type Claims struct {
	Name  string   `json:"nombre"`
	Roles []string `json:"roles"`
	jwt.StandardClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Keeper stores tokens per session in the same KV the cart lives in.
type Keeper struct {
	kv  storage.KV
	now func() time.Time
}

func NewKeeper(kv storage.KV) *Keeper {
	return &Keeper{kv: kv, now: time.Now}
}

func tokenKey(sessionID string) string {
	return tokenKeyPrefix + sessionID
}

func (k *Keeper) Save(ctx context.Context, sessionID, token string) error {
	if err := k.kv.Set(ctx, tokenKey(sessionID), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *Keeper) Remove(ctx context.Context, sessionID string) error {
	if err := k.kv.Remove(ctx, tokenKey(sessionID)); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// Token returns the stored credential if it is present, decodable and not
// expired. An expired or unreadable token is removed and reported absent.
func (k *Keeper) Token(ctx context.Context, sessionID string) (string, bool) {
	raw, err := k.kv.Get(ctx, tokenKey(sessionID))
	if err != nil {
		return "", false
	}
	if _, err := k.decode(raw); err != nil {
		_ = k.Remove(ctx, sessionID)
		return "", false
	}
	return raw, true
}

// Claims returns the decoded claims of the stored token under the same
// validity rules as Token.
func (k *Keeper) Claims(ctx context.Context, sessionID string) (*Claims, bool) {
	raw, err := k.kv.Get(ctx, tokenKey(sessionID))
	if err != nil {
		return nil, false
	}
	claims, err := k.decode(raw)
	if err != nil {
		_ = k.Remove(ctx, sessionID)
		return nil, false
	}
	return claims, true
}

var errTokenExpired = errors.New("token expired")

func (k *Keeper) decode(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	if claims.ExpiresAt != 0 && claims.ExpiresAt < k.now().Unix() {
		return nil, errTokenExpired
	}
	return claims, nil
}
