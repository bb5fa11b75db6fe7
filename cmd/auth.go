package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/stores"
)

// AuthLogin signs in with --email and --password and persists the identity to the session slot.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	email := cmd.String("email")
	r.logger.Info("signing in", "email", email)

	identity, err := r.session.Login(ctx, email, cmd.String("password"))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	r.logger.Info("signed in", "user", identity.ID)
	return r.writePlain("✓ Signed in as %s <%s>\n", identity.Username, identity.Email)
}

// AuthRegister creates an account, signs it in and persists the identity.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	identity, err := r.session.Register(ctx, stores.Registration{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Secret:   cmd.String("password"),
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.logger.Info("registered", "user", identity.ID)
	return r.writePlain("✓ Registered and signed in as %s <%s>\n", identity.Username, identity.Email)
}

// AuthLogout clears the session slot.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	if !r.session.State().IsAuthenticated() {
		return r.writePlain("Not signed in\n")
	}

	r.session.Logout(ctx)
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the restored identity.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	identity, ok := r.session.Current()
	if cmd.Bool("json") {
		if !ok {
			return r.writeJSON(map[string]any{"isAuthenticated": false}, cmd.Bool("pretty"))
		}
		return r.writeJSON(map[string]any{"isAuthenticated": true, "user": identity}, cmd.Bool("pretty"))
	}

	if !ok {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("User: %s <%s>\n", identity.Username, identity.Email)
	r.writePlain("ID: %s\n", identity.ID)
	if identity.IsAdmin {
		r.writePlain("Role: admin\n")
	}
	return nil
}

// currentUser returns the signed-in user's id and admin flag, or [shared.ErrNotAuthenticated].
func (r *Runner) currentUser() (string, bool, error) {
	if err := r.requireSession(); err != nil {
		return "", false, err
	}
	identity, ok := r.session.Current()
	if !ok {
		return "", false, fmt.Errorf("%w: run 'marquee auth login' first", shared.ErrNotAuthenticated)
	}
	return identity.ID, identity.IsAdmin, nil
}
