package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTicketsDisabled is returned when no ticket secret is configured.
	ErrTicketsDisabled = errors.New("room tickets disabled")
	// ErrInvalidTicket is returned for tickets that fail validation.
	ErrInvalidTicket = errors.New("invalid room ticket")
)

// TicketClaims are carried by a room ticket. A ticket proves its holder was
// admitted to Room and lets it re-enter without the room password.
type TicketClaims struct {
	Room     string `json:"room"`
	UserName string `json:"user_name,omitempty"`
	jwt.RegisteredClaims
}

// TicketConfig holds room ticket configuration.
type TicketConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Enabled reports whether tickets can be issued.
func (cfg *TicketConfig) Enabled() bool {
	return cfg != nil && len(cfg.Secret) > 0
}

// IssueTicket signs a ticket for the given normalized room id.
func IssueTicket(cfg *TicketConfig, room, userName string) (string, error) {
	if !cfg.Enabled() {
		return "", ErrTicketsDisabled
	}

	now := time.Now()
	claims := TicketClaims{
		Room:     room,
		UserName: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, nil
}

// ValidateTicket parses and validates a room ticket.
func ValidateTicket(cfg *TicketConfig, tokenString string) (*TicketClaims, error) {
	if !cfg.Enabled() {
		return nil, ErrTicketsDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTicket
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: issuer", ErrInvalidTicket)
	}

	return claims, nil
}
