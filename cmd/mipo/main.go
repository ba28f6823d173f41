package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/shhac/mipo/internal/app"
)

// CLI is the mipo command tree.
type CLI struct {
	Server  string `help:"Generation server URL." placeholder:"URL"`
	Storage string `help:"Directory for preferences, gallery and session." type:"path"`
	Debug   bool   `help:"Enable debug logging."`

	Status      statusCmd      `cmd:"" help:"Load everything the app loads at startup."`
	Templates   templatesCmd   `cmd:"" help:"List strip templates."`
	Backgrounds backgroundsCmd `cmd:"" help:"List backgrounds."`
	Generate    generateCmd    `cmd:"" help:"Generate a photo strip from photo files."`
	Upload      uploadCmd      `cmd:"" help:"Upload an image and print its save page."`

	Login          loginCmd          `cmd:"" help:"Sign in."`
	Register       registerCmd       `cmd:"" help:"Create an account."`
	Logout         logoutCmd         `cmd:"" help:"Sign out."`
	Whoami         whoamiCmd         `cmd:"" help:"Show the signed-in user."`
	ForgotPassword forgotPasswordCmd `cmd:"" name:"forgot-password" help:"Request a password reset."`
	ResetPassword  resetPasswordCmd  `cmd:"" name:"reset-password" help:"Set a new password with a reset token."`
	DeleteAccount  deleteAccountCmd  `cmd:"" name:"delete-account" help:"Delete the signed-in account."`
	Profile        profileCmd        `cmd:"" help:"Update profile settings."`

	Gallery    galleryCmd    `cmd:"" help:"Saved strips."`
	Plans      plansCmd      `cmd:"" help:"List subscription plans."`
	Purchase   purchaseCmd   `cmd:"" help:"Buy a subscription plan."`
	Locale     localeCmd     `cmd:"" help:"Show or change the language."`
	Onboarding onboardingCmd `cmd:"" help:"Show or change onboarding progress."`
}

// runContext is bound into every command's Run method.
type runContext struct {
	ctx context.Context
	app *app.App
	out *output
}

// errReported is a command failure already shown to the user.
var errReported = errors.New("command failed")

func main() {
	if err := runApp(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		}
		os.Exit(1)
	}
}

// runApp is the main application entry point with panic recovery.
func runApp() (err error) {
	// Create a temporary stderr logger for bootstrap errors
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			tempLogger.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("mipo"),
		kong.Description("Photo strips from the terminal."),
		kong.UsageOnError(),
	)

	cfg, err := app.LoadConfig(app.Overrides{
		ServerURL:   cli.Server,
		StoragePath: cli.Storage,
		Debug:       cli.Debug,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	mipo, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer mipo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := newOutput(os.Stdout, os.Stderr)
	if err := kctx.Run(&runContext{ctx: ctx, app: mipo, out: out}); err != nil {
		mipo.Logger().Error("command failed",
			slog.String("command", kctx.Command()),
			slog.Any("error", err))
		out.Fail(err)
		return errReported
	}
	return nil
}
