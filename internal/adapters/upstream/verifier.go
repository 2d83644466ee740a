// Package upstream adapts the storefront API's auth endpoints to the
// edge's ports.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/gateway"
	"github.com/target/storefront-edge/internal/ports"
)

const validateAdminPath = "/api/auth/validate-admin"

// AdminVerifierOptions groups dependencies for AdminVerifier.
type AdminVerifierOptions struct {
	Gateway *gateway.Client
	Logger  *slog.Logger
}

// AdminVerifier checks admin privilege against the upstream validation
// endpoint. Results are never cached; every call hits upstream.
type AdminVerifier struct {
	gw     *gateway.Client
	logger *slog.Logger
}

var _ ports.AdminVerifier = (*AdminVerifier)(nil)

// NewAdminVerifier constructs an AdminVerifier. A gateway client is required.
func NewAdminVerifier(opts AdminVerifierOptions) (*AdminVerifier, error) {
	if opts.Gateway == nil {
		return nil, errors.New("gateway client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminVerifier{
		gw:     opts.Gateway,
		logger: logger.With("component", "admin_verifier"),
	}, nil
}

// VerifyAdmin calls the validation endpoint with the supplied token. The
// returned status is the upstream HTTP status; a non-2xx answer is a
// denial, not an error. An error means the check itself could not be
// completed (transport failure or malformed response).
func (v *AdminVerifier) VerifyAdmin(ctx context.Context, token string) (domainauth.AdminStatus, int, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+strings.TrimPrefix(token, "Bearer "))

	res, err := v.gw.Do(ctx, validateAdminPath, gateway.Options{
		Header: header,
		Parse:  gateway.ParseText,
	})
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.Status > 0 {
			return domainauth.AdminStatus{}, apiErr.Status, nil
		}
		return domainauth.AdminStatus{}, 0, fmt.Errorf("validate admin: %w", err)
	}

	// A 2xx whose body does not decode to the expected shape is a
	// validation-process failure, not a grant.
	var status domainauth.AdminStatus
	if err := json.Unmarshal(res.Body, &status); err != nil {
		return domainauth.AdminStatus{}, 0, fmt.Errorf("validate admin: decode response: %w", err)
	}

	return status, res.Status, nil
}
