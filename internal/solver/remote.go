package solver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spboyer/knapsack/internal/models"
)

const (
	// DefaultTokenEnv holds the API token for the hosted solver.
	DefaultTokenEnv = "KNAPSACK_SOLVER_TOKEN"

	// DefaultTokenHeader is the request header carrying the static token.
	DefaultTokenHeader = "X-Auth-Token"

	AuthToken = "token"
	AuthAzure = "azure"

	moduleName    = "knapsack/solver"
	moduleVersion = "v1.0.0"
)

// RemoteOptions configure [RemoteSolver].
type RemoteOptions struct {
	Endpoint  string        `mapstructure:"endpoint"`
	TimeLimit time.Duration `mapstructure:"time_limit"`
	Label     string        `mapstructure:"label"`

	// Auth is "token" (default) or "azure".
	Auth        string `mapstructure:"auth"`
	TokenEnv    string `mapstructure:"token_env"`
	TokenHeader string `mapstructure:"token_header"`
	Scope       string `mapstructure:"scope"`

	// MaxRetries follows azcore semantics: 0 uses the SDK default, -1
	// disables retries. Unset means no retries.
	MaxRetries *int32 `mapstructure:"max_retries"`

	// Transport replaces the HTTP client, for tests.
	Transport policy.Transporter `mapstructure:"-"`

	// Credential replaces DefaultAzureCredential when Auth is "azure".
	Credential azcore.TokenCredential `mapstructure:"-"`
}

// RemoteSolver posts the model to a hosted solver service and returns the
// sample set it answers with.
type RemoteSolver struct {
	opts     RemoteOptions
	pipeline runtime.Pipeline
}

// remoteRequest is the JSON body sent to the service.
type remoteRequest struct {
	Model     *models.Model `json:"model"`
	TimeLimit float64       `json:"time_limit,omitempty"`
	Label     string        `json:"label,omitempty"`
}

func NewRemoteSolver(opts RemoteOptions) (*RemoteSolver, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("%w: remote solver requires an endpoint", models.ErrInvalidInput)
	}
	if opts.Auth == "" {
		opts.Auth = AuthToken
	}
	if opts.TokenEnv == "" {
		opts.TokenEnv = DefaultTokenEnv
	}
	if opts.TokenHeader == "" {
		opts.TokenHeader = DefaultTokenHeader
	}

	var perRetry []policy.Policy
	switch opts.Auth {
	case AuthToken:
		perRetry = append(perRetry, &tokenPolicy{header: opts.TokenHeader, env: opts.TokenEnv})
	case AuthAzure:
		if opts.Scope == "" {
			return nil, fmt.Errorf("%w: remote solver auth 'azure' requires a scope", models.ErrInvalidInput)
		}
		cred := opts.Credential
		if cred == nil {
			var err error
			if cred, err = azidentity.NewDefaultAzureCredential(nil); err != nil {
				return nil, fmt.Errorf("creating azure credential: %w", err)
			}
		}
		perRetry = append(perRetry, runtime.NewBearerTokenPolicy(cred, []string{opts.Scope}, nil))
	default:
		return nil, fmt.Errorf("%w: unknown remote solver auth %q", models.ErrInvalidInput, opts.Auth)
	}

	clientOpts := &policy.ClientOptions{Transport: opts.Transport}
	clientOpts.Retry.MaxRetries = -1
	if opts.MaxRetries != nil {
		clientOpts.Retry.MaxRetries = *opts.MaxRetries
	}

	return &RemoteSolver{
		opts:     opts,
		pipeline: runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{PerRetry: perRetry}, clientOpts),
	}, nil
}

func (s *RemoteSolver) Name() string { return string(EngineRemote) }

func (s *RemoteSolver) Initialize(ctx context.Context) error { return nil }

func (s *RemoteSolver) Shutdown(ctx context.Context) error { return nil }

func (s *RemoteSolver) Sample(ctx context.Context, model *models.Model) (*models.SampleSet, error) {
	start := time.Now()
	set, err := s.post(ctx, model)
	if err != nil {
		return nil, models.NewUpstreamError(s.Name(), err)
	}
	if set.Info == nil {
		set.Info = map[string]any{}
	}
	set.Info["endpoint"] = s.opts.Endpoint
	return withInfo(set, EngineRemote, start), nil
}

func (s *RemoteSolver) post(ctx context.Context, model *models.Model) (*models.SampleSet, error) {
	req, err := runtime.NewRequest(ctx, http.MethodPost, s.opts.Endpoint)
	if err != nil {
		return nil, err
	}
	body := remoteRequest{Model: model, TimeLimit: s.opts.TimeLimit.Seconds(), Label: s.opts.Label}
	if err := runtime.MarshalAsJSON(req, body); err != nil {
		return nil, err
	}

	resp, err := s.pipeline.Do(req)
	if err != nil {
		return nil, err
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return nil, runtime.NewResponseError(resp)
	}

	var set models.SampleSet
	if err := runtime.UnmarshalAsJSON(resp, &set); err != nil {
		return nil, fmt.Errorf("reading solver response: %w", err)
	}
	return &set, nil
}

// tokenPolicy sets a static API token read from the environment.
type tokenPolicy struct {
	header string
	env    string
}

var errMissingToken = errors.New("solver token is not set")

func (p *tokenPolicy) Do(req *policy.Request) (*http.Response, error) {
	token := os.Getenv(p.env)
	if token == "" {
		return nil, fmt.Errorf("%w: set %s", errMissingToken, p.env)
	}
	req.Raw().Header.Set(p.header, token)
	return req.Next()
}
