package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Actor identifies who is performing a ledger operation. The gateway in
// front of this service authenticates the token; this package only decodes
// its claims to attribute the action.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Valid reports whether the actor carries the minimum attribution fields.
func (a Actor) Valid() bool {
	return strings.TrimSpace(a.ID) != ""
}

type claims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// FromBearer extracts the actor from an Authorization header value. The
// signature is not re-verified here; the upstream gateway already did that.
func FromBearer(header string) (Actor, error) {
	token := strings.TrimSpace(header)
	if token == "" {
		return Actor{}, fmt.Errorf("authorization header missing")
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}

	parser := jwt.NewParser()
	var parsed claims
	if _, _, err := parser.ParseUnverified(token, &parsed); err != nil {
		return Actor{}, fmt.Errorf("decoding identity token: %w", err)
	}

	subject := parsed.Subject
	if subject == "" {
		subject = parsed.RegisteredClaims.Subject
	}
	actor := Actor{
		ID:   subject,
		Name: parsed.Name,
		Role: parsed.Role,
	}
	if !actor.Valid() {
		return Actor{}, fmt.Errorf("identity token missing subject")
	}
	return actor, nil
}

type ctxKey struct{}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFromContext returns the actor previously attached to the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	if !ok || !actor.Valid() {
		return Actor{}, false
	}
	return actor, true
}
