// Package auth issues and checks the credentials guarding private rooms.
package auth

import (
	"fmt"
	"room-engine/domain"
	"room-engine/errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const inviteIssuer = "room-engine"

// InviteClaims binds an invitation to one room and one user.
type InviteClaims struct {
	RoomKey string `json:"room"`
	UserID  string `json:"user_id"`
	jwt.RegisteredClaims
}

type InviteService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewInviteService(secret string, ttl time.Duration) *InviteService {
	return &InviteService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 invitation valid for ttl.
func (s *InviteService) Issue(key domain.RoomKey, userID string) (string, error) {
	now := s.now()
	claims := &InviteClaims{
		RoomKey: string(key),
		UserID:  userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    inviteIssuer,
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and that the token was issued for (key, userID).
func (s *InviteService) Verify(token string, key domain.RoomKey, userID string) error {
	parsed, err := jwt.ParseWithClaims(token, &InviteClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(inviteIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidInviteToken, err)
	}
	claims, ok := parsed.Claims.(*InviteClaims)
	if !ok || !parsed.Valid {
		return errors.ErrInvalidInviteToken
	}
	if claims.RoomKey != string(key) || claims.UserID != userID {
		return fmt.Errorf("%w: issued for another room or user", errors.ErrInvalidInviteToken)
	}
	return nil
}
