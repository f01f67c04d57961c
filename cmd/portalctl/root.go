package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutriplan/portal/pkg/apiclient"
	"github.com/nutriplan/portal/pkg/config"
	"github.com/nutriplan/portal/pkg/credstore"
	"github.com/nutriplan/portal/pkg/i18n"
	"github.com/nutriplan/portal/pkg/logger"
	"github.com/nutriplan/portal/pkg/session"
	"github.com/nutriplan/portal/pkg/subscription"
	"github.com/nutriplan/portal/svc/account"
	"github.com/nutriplan/portal/svc/billing"
	"github.com/nutriplan/portal/svc/reporting"
)

//go:embed locales
var localesFS embed.FS

// Config is the CLI's environment configuration.
type Config struct {
	APIURL          string `env:"PORTAL_API_URL" envDefault:"https://api.nutriplan.app"`
	CredentialsFile string `env:"PORTAL_CREDENTIALS_FILE"`
	Debug           bool   `env:"PORTAL_DEBUG" envDefault:"false"`
}

var rootCmd = &cobra.Command{
	Use:           "portalctl",
	Short:         "Command-line front end for the NutriPlan portal",
	Long:          "portalctl signs in to the NutriPlan platform and manages the account's subscription: status, cancel, plan changes, and reactivation.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (overrides PORTAL_API_URL)")

	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		whoamiCmd,
		statusCmd,
		localeCmd,
		cancelCmd,
		changePlanCmd,
		plansCmd,
		reactivateCmd,
		reportCmd,
	)
}

// app bundles the wired dependencies every command needs. It is rebuilt per
// invocation; the only state that survives between runs is the credentials
// file.
type app struct {
	cfg      Config
	creds    *credstore.FileStore
	client   *apiclient.Client
	sessions *session.Manager
	accounts *account.Service
	reader   *subscription.Reader
	engine   *subscription.Engine
	reports  *reporting.Service
	tr       *i18n.Translator
	locale   string
	log      *slog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if flagURL, _ := cmd.Flags().GetString("api-url"); flagURL != "" {
		cfg.APIURL = flagURL
	}

	credsPath := cfg.CredentialsFile
	if credsPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		credsPath = filepath.Join(dir, "portalctl", "credentials.json")
	}

	creds, err := credstore.NewFileStore(credsPath)
	if err != nil {
		return nil, err
	}

	logOpts := []logger.Option{
		logger.WithProduction("portalctl"),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithLevel(slog.LevelError),
	}
	if cfg.Debug {
		logOpts = []logger.Option{logger.WithDevelopment("portalctl"), logger.WithOutput(cmd.ErrOrStderr())}
	}
	log := logger.New(logOpts...)

	client, err := apiclient.New(cfg.APIURL, creds, apiclient.WithLogger(log))
	if err != nil {
		return nil, err
	}

	catalog, err := i18n.LoadCatalog(cmd.Context(), localesFS)
	if err != nil {
		return nil, err
	}
	tr := i18n.New(catalog, i18n.WithLogger(log))

	locale, _ := creds.Locale(cmd.Context())
	if locale == "" {
		locale = i18n.MatchLocale(envLocales(), tr.SupportedLanguages(), i18n.DefaultLanguage)
	}

	// The CLI has no route tree: every command runs "on" the root path,
	// which is public, and navigation signals become hints on stderr.
	nav := session.NavigatorFuncs{
		CurrentFunc: func() string { return "/" },
		NavigateFunc: func(path string) {
			switch path {
			case session.AdminLoginPath, session.SuperadminLoginPath, session.UserLoginPath:
				fmt.Fprintln(cmd.ErrOrStderr(), tr.T(locale, "cli.session_ended"))
			case session.TrialEndedPath:
				fmt.Fprintln(cmd.ErrOrStderr(), tr.T(locale, "cli.trial_ended"))
			}
		},
	}

	sessions := session.New(creds, nav, session.WithLogger(log))

	// A 401 that survives the client's refresh attempt means the session is
	// gone for good; tear it down so the next command starts clean.
	invalidate := func(ctx context.Context) { sessions.Logout(ctx) }

	a := &app{
		cfg:      cfg,
		creds:    creds,
		client:   client,
		sessions: sessions,
		accounts: account.New(client, sessions, account.WithLogger(log)),
		tr:       tr,
		locale:   locale,
		log:      log,
	}

	a.reader = subscription.NewReader(client,
		subscription.WithReaderLogger(log),
		subscription.WithSessionInvalidHandler(invalidate),
	)
	a.engine = subscription.NewEngine(client,
		subscription.WithEngineLogger(log),
		subscription.WithEngineSessionInvalidHandler(invalidate),
		subscription.WithRedirect(func(url string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n", tr.T(locale, "cli.checkout"), url)
		}),
	)
	a.reports = reporting.New(client,
		reporting.WithLogger(log),
		reporting.WithSessionInvalidHandler(invalidate),
	)

	return a, nil
}

// requireSession rehydrates from the credentials file and fails the command
// when no valid session remains.
func (a *app) requireSession(cmd *cobra.Command) error {
	a.sessions.Rehydrate(cmd.Context())
	if !a.sessions.IsAuthenticated() {
		return fmt.Errorf("%s", a.tr.T(a.locale, "cli.not_signed_in"))
	}
	return nil
}

// envLocales derives locale candidates from the usual POSIX variables,
// normalized to BCP 47 tags ("es_MX.UTF-8" becomes "es-MX").
func envLocales() []string {
	var out []string
	for _, name := range []string{"LANGUAGE", "LC_ALL", "LANG"} {
		v := os.Getenv(name)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		for _, part := range strings.Split(v, ":") {
			if tag, _, _ := strings.Cut(part, "."); tag != "" {
				out = append(out, strings.ReplaceAll(tag, "_", "-"))
			}
		}
	}
	return out
}

func (a *app) settings() *billing.SettingsController {
	return billing.NewSettingsController(a.reader, a.engine)
}

func (a *app) reactivation() *billing.ReactivationController {
	return billing.NewReactivationController(a.engine)
}
