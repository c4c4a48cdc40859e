package cli

import (
	"errors"

	"github.com/R3E-Network/stockboard/internal/config"
	"github.com/R3E-Network/stockboard/internal/dashboard"
	"github.com/R3E-Network/stockboard/internal/httputil"
)

func newAPIClient() (*dashboard.Client, *config.ClientConfig, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load config", err)
	}
	client := dashboard.NewClient(httputil.ClientConfig{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.Timeout,
	})
	return client, cfg, nil
}

// apiFailure maps an API call error to the matching exit code.
func apiFailure(message string, err error) error {
	var apiErr *dashboard.APIError
	if errors.As(err, &apiErr) {
		return WrapExitError(ExitFailure, message, err)
	}
	return WrapExitError(ExitCommandError, message, err)
}
