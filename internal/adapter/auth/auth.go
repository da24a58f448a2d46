// Package auth verifies admin bearer tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/option"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

// StaticVerifier accepts a single shared admin token.
type StaticVerifier struct {
	token []byte
}

// NewStaticVerifier creates a verifier for token. An empty token rejects everything.
func NewStaticVerifier(token string) *StaticVerifier {
	return &StaticVerifier{token: []byte(token)}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (domain.Principal, error) {
	if len(v.token) == 0 || token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(v.token, []byte(token)) != 1 {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{UID: "admin"}, nil
}

// idTokenVerifier is the part of the Firebase auth client we need.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier accepts Firebase Authentication ID tokens issued for the project.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier initializes a Firebase app for projectID.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	p := domain.Principal{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		p.Email = email
	}
	return p, nil
}
