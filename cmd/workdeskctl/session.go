package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/workdesk/workdesk-go/internal/bootstrap"
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	apperrors "github.com/workdesk/workdesk-go/internal/errors"
	"github.com/workdesk/workdesk-go/internal/ports"
)

const commandTimeout = 30 * time.Second

// cliNavigator prints navigation signals instead of changing routes.
type cliNavigator struct{}

func (cliNavigator) NavigateToLogin(returnURL string) {
	target := "/login"
	if returnURL != "" {
		target += "?returnUrl=" + returnURL
	}
	_ = writef(os.Stdout, "redirect: %s\n", target)
}

func (cliNavigator) NavigateTo(path string) {
	_ = writef(os.Stdout, "redirect: %s\n", path)
}

func buildClient(cmdCtx *commandContext) (*bootstrap.SessionClient, error) {
	return bootstrap.BuildSessionClient(cmdCtx.Config.Client, cliNavigator{}, cmdCtx.Logger)
}

func runLogin(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email (required)")
	password := fs.String("password", "", "account password (required)")
	remember := fs.Bool("remember", false, "extend the session lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	client, err := buildClient(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	identity, err := client.Service.Login(ctx, ports.Credentials{
		Email:      *email,
		Password:   *password,
		RememberMe: *remember,
	})
	if err != nil {
		return describeLoginError(err)
	}

	state := client.Store.State()
	if state.Source == domainauth.SourceDemo {
		if werr := writef(os.Stdout, "backend unreachable; demo session installed\n"); werr != nil {
			return werr
		}
	}
	return printIdentity(&identity, state.Source)
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("whoami takes no arguments, got %q", args)
	}

	client, err := buildClient(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	identity := client.Service.CheckSession(ctx)
	if identity == nil {
		return errors.New("not logged in")
	}
	return printIdentity(identity, client.Store.State().Source)
}

func runCheckRoute(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("check-route", flag.ContinueOnError)
	path := fs.String("path", "", "route to evaluate (required)")
	rolesFlag := fs.String("roles", "", "comma-separated roles the route requires")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("check-route requires -path")
	}

	roles, err := parseRoles(*rolesFlag)
	if err != nil {
		return err
	}

	client, err := buildClient(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	decision := client.Guard.RequireRoles(ctx, *path, roles)
	if decision.Allowed {
		return writef(os.Stdout, "allowed: %s\n", *path)
	}
	return writef(os.Stdout, "denied: %s (redirect %s)\n", *path, decision.RedirectTo)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("logout takes no arguments, got %q", args)
	}

	client, err := buildClient(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	client.Service.Logout(ctx)
	return writef(os.Stdout, "logged out\n")
}

func runForgotPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ContinueOnError)
	email := fs.String("email", "", "account email (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("forgot-password requires -email")
	}

	client, err := buildClient(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	if err := client.Service.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	return writef(os.Stdout, "reset requested; check the server log for the token\n")
}

func runResetPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	token := fs.String("token", "", "reset token (required)")
	password := fs.String("password", "", "new password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" || *password == "" {
		return errors.New("reset-password requires -token and -password")
	}

	client, err := buildClient(cmdCtx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	if err := client.Service.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	return writef(os.Stdout, "password updated\n")
}

func printIdentity(identity *domainauth.Identity, source domainauth.Source) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", identity.DisplayName())
	fmt.Fprintf(w, "Email:\t%s\n", identity.Email)
	fmt.Fprintf(w, "Role:\t%s\n", identity.Role)
	if identity.Position != "" {
		fmt.Fprintf(w, "Position:\t%s\n", identity.Position)
	}
	fmt.Fprintf(w, "Source:\t%s\n", source)
	return w.Flush()
}

func parseRoles(raw string) ([]domainauth.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var roles []domainauth.Role
	for _, part := range strings.Split(raw, ",") {
		role, err := domainauth.ParseRole(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse role %q: %w", part, err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func describeLoginError(err error) error {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidCredentials:
		return errors.New("login failed: invalid email or password")
	case apperrors.ErrCodeAccountNotFound:
		return errors.New("login failed: no account with that email")
	case apperrors.ErrCodeTooManyAttempts:
		return errors.New("login failed: too many attempts, try again later")
	default:
		return err
	}
}
