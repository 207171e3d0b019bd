// Package firebase verifies ID tokens issued by Firebase Authentication so
// users can sign in with a Firebase account instead of a local password.
package firebase

import (
	"context"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/mdobak/go-xerrors"
	"google.golang.org/api/option"
)

var ErrNoCredentials = xerrors.Message("firebase credentials path not provided")

// Verifier checks Firebase ID tokens.
type Verifier struct {
	client       *auth.Client
	checkRevoked bool
}

// NewVerifier initializes a Firebase app from a service account file. With
// checkRevoked set every verification also asks Firebase whether the
// session was revoked, which costs a network round trip.
func NewVerifier(ctx context.Context, credentialsPath string, checkRevoked bool, logger *slog.Logger) (*Verifier, error) {
	if credentialsPath == "" {
		return nil, xerrors.New(ErrNoCredentials)
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, xerrors.Newf("firebase credentials file not found at %s: %w", credentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, xerrors.Newf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, xerrors.Newf("getting firebase auth client: %w", err)
	}

	logger.Info("Firebase sign-in enabled", slog.Bool("check_revoked", checkRevoked))
	return &Verifier{client: client, checkRevoked: checkRevoked}, nil
}

// VerifyIDToken returns the decoded token when idToken is valid.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if v.checkRevoked {
		return v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	}
	return v.client.VerifyIDToken(ctx, idToken)
}
