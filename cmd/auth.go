package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/vdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthRegister creates a new account and signs it in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	user, err := session.Register(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
	if err != nil {
		return describeAuthFailure(err)
	}

	r.logger.Info("account created", "email", user.Email)
	r.writePlain("✓ Registered as %s\n", user.Email)
	if user.DisplayName != "" {
		r.writePlain("Display name: %s\n", user.DisplayName)
	}
	return nil
}

// AuthLogin signs in with an existing account and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	user, err := session.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return describeAuthFailure(err)
	}

	r.writePlain("✓ Signed in as %s\n", user.Email)
	return nil
}

// AuthLogout clears the stored session token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	if err := session.Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	r.writePlain("✓ Signed out\n")
	return nil
}

// AuthRefresh forces a token refresh for the active session.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	if err := session.RefreshToken(ctx); err != nil {
		if errors.Is(err, shared.ErrNotSignedIn) {
			return fmt.Errorf("%w: run 'vdx auth login' first", err)
		}
		return err
	}

	r.writePlain("✓ Session token refreshed\n")
	return nil
}

// AuthStatus shows the signed-in user, if any.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	user := session.CurrentUser()
	if cmd.Bool("json") {
		status := map[string]any{"signed_in": user != nil}
		if user != nil {
			status["user"] = user
		}
		return r.writeJSON(status, true)
	}

	if user == nil {
		r.writePlain("✗ Not signed in\n")
		return nil
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Email: %s\n", user.Email)
	if user.DisplayName != "" {
		r.writePlain("Name: %s\n", user.DisplayName)
	}
	r.writePlain("UID: %s\n", user.UID)
	return nil
}

// describeAuthFailure surfaces the provider's mapped message for rejected
// credentials instead of the raw error code.
func describeAuthFailure(err error) error {
	var authErr *shared.AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, authErr.Message)
	}
	return err
}
