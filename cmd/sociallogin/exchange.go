package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/api"
	"github.com/PizzaHomicide/sociallogin/internal/auth"
	"github.com/PizzaHomicide/sociallogin/internal/config"
	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/PizzaHomicide/sociallogin/internal/service"
	"github.com/PizzaHomicide/sociallogin/internal/token"
)

func runExchange(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("exchange", flag.ExitOnError)
	providerName := fs.String("provider", cfg.Auth.Provider, "Social provider (google, facebook, github, linkedin)")
	code := fs.String("code", "", "Provider authorization code")
	accessToken := fs.String("access-token", "", "Provider access token")
	browser := fs.Bool("browser", false, "Obtain an authorization code through the browser")
	save := fs.Bool("save", true, "Store the tokens in the config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	provider, err := domain.ParseSocialProvider(*providerName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var payload domain.AuthorizationPayload
	if *browser {
		if *code != "" || *accessToken != "" {
			return errors.New("-browser cannot be combined with -code or -access-token")
		}
		browserCode, err := browserAuthorizationCode(ctx, cfg, provider, out)
		if err != nil {
			return err
		}
		payload = domain.AuthorizationCode(browserCode)
	} else {
		payload, err = payloadFromFlags(*code, *accessToken)
		if err != nil {
			return err
		}
	}

	queue := api.NewMainQueue()
	defer queue.Close()

	loginService, err := service.NewLoginService(cfg, queue)
	if err != nil {
		return err
	}

	results := make(chan domain.LoginResult, 1)
	loginService.Login(ctx, provider, payload, func(accessToken, refreshToken string, err error) {
		results <- domain.LoginResult{AccessToken: accessToken, RefreshToken: refreshToken, Err: err}
	})
	result := <-results

	if !result.Succeeded() {
		return fmt.Errorf("%s login failed: %w", provider.DisplayName(), result.Err)
	}

	printResult(out, result, time.Now())

	if *save {
		if err := service.SaveTokens(provider, result); err != nil {
			log.Warn("Error saving tokens to config", "error", err)
			return fmt.Errorf("login succeeded but tokens could not be saved: %w", err)
		}
	}
	return nil
}

// payloadFromFlags requires exactly one of code and accessToken
func payloadFromFlags(code, accessToken string) (domain.AuthorizationPayload, error) {
	switch {
	case code != "" && accessToken != "":
		return domain.AuthorizationPayload{}, errors.New("-code and -access-token are mutually exclusive")
	case code != "":
		return domain.AuthorizationCode(code), nil
	case accessToken != "":
		return domain.AccessToken(accessToken), nil
	default:
		return domain.AuthorizationPayload{}, errors.New("one of -code, -access-token or -browser is required")
	}
}

func browserAuthorizationCode(ctx context.Context, cfg *config.Config, provider domain.SocialProvider, out io.Writer) (string, error) {
	providerCfg := cfg.Provider(provider.String())
	a, err := auth.NewAuth(provider, providerCfg.ClientID, providerCfg.Scopes, cfg.Auth.CallbackPort)
	if err != nil {
		return "", err
	}
	a.OnLoginURL(func(loginURL string) {
		_, _ = fmt.Fprintf(out, "Log in with %s at:\n  %s\n", provider.DisplayName(), loginURL)
	})

	result := a.DoAuth(ctx)
	if result.Error != nil {
		return "", fmt.Errorf("browser login failed: %w", result.Error)
	}
	return result.Code, nil
}

func printResult(out io.Writer, result domain.LoginResult, now time.Time) {
	_, _ = fmt.Fprintf(out, "access_token:  %s\n", result.AccessToken)
	if result.RefreshToken != "" {
		_, _ = fmt.Fprintf(out, "refresh_token: %s\n", result.RefreshToken)
	}

	info, err := token.Inspect(result.AccessToken)
	if err != nil {
		return
	}
	if info.Subject != "" {
		_, _ = fmt.Fprintf(out, "subject:       %s\n", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		_, _ = fmt.Fprintf(out, "expires:       %s (in %s)\n", info.ExpiresAt.Format(time.RFC3339), info.ExpiresIn(now).Round(time.Second))
	}
}
