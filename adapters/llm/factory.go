package llm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// Credentials are the provider secrets read at backend construction.
type Credentials struct {
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

type FactoryOptions struct {
	// Strict turns the fallback to the mock backend off: unknown or
	// misconfigured models fail with a ConfigurationError instead.
	Strict  bool
	Timeout time.Duration
}

// Constructor builds the backend of one catalog entry.
type Constructor func(spec ModelSpec, creds Credentials, timeout time.Duration) (domain.Backend, error)

func defaultConstructors() map[string]Constructor {
	return map[string]Constructor{
		ProviderGemini: func(spec ModelSpec, creds Credentials, timeout time.Duration) (domain.Backend, error) {
			return NewGeminiBackend(context.Background(), spec.ID, spec.ProviderModel, creds.GeminiAPIKey, timeout)
		},
		ProviderOpenAI: func(spec ModelSpec, creds Credentials, timeout time.Duration) (domain.Backend, error) {
			return NewOpenAIBackend(spec.ID, spec.ProviderModel, creds.OpenAIAPIKey, creds.OpenAIBaseURL, timeout)
		},
		ProviderMock: func(spec ModelSpec, _ Credentials, _ time.Duration) (domain.Backend, error) {
			return NewMockBackend(spec.ID), nil
		},
	}
}

// Factory resolves model identifiers through the catalog.
//
// Fallback policy: unless Strict is set, an identifier that is not in the
// catalog, or whose backend cannot be constructed, gets a MockBackend stamped
// with that identifier. The UI always has a working backend; the fallback is
// logged so a missing key does not go unnoticed.
type Factory struct {
	catalog      *Catalog
	creds        Credentials
	opts         FactoryOptions
	constructors map[string]Constructor

	mu    sync.Mutex
	cache map[string]domain.Backend
}

var _ domain.BackendFactory = (*Factory)(nil)

func NewFactory(catalog *Catalog, creds Credentials, opts FactoryOptions) *Factory {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Factory{
		catalog:      catalog,
		creds:        creds,
		opts:         opts,
		constructors: defaultConstructors(),
		cache:        make(map[string]domain.Backend),
	}
}

func (f *Factory) Create(modelID string) (domain.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.cache[modelID]; ok {
		return b, nil
	}

	b, err := f.build(modelID)
	if err != nil {
		return nil, err
	}
	f.cache[modelID] = b
	return b, nil
}

func (f *Factory) build(modelID string) (domain.Backend, error) {
	logger := log.With(zap.String("model", modelID))

	spec, ok := f.catalog.Lookup(modelID)
	if !ok {
		if f.opts.Strict {
			return nil, &domain.ConfigurationError{Model: modelID, Detail: "model is not in the catalog"}
		}
		logger.Info("unknown model, using mock backend")
		return NewMockBackend(modelID), nil
	}

	construct, ok := f.constructors[spec.Provider]
	if !ok {
		return nil, &domain.ConfigurationError{Model: modelID, Provider: spec.Provider, Detail: "no constructor for provider"}
	}

	b, err := construct(spec, f.creds, f.opts.Timeout)
	if err != nil {
		if f.opts.Strict {
			return nil, err
		}
		logger.Warn("backend misconfigured, using mock backend", zap.String("provider", spec.Provider), zap.Error(err))
		return NewMockBackend(modelID), nil
	}
	return b, nil
}

// Models lists the catalog for model pickers.
func (f *Factory) Models() []ModelSpec {
	return append([]ModelSpec(nil), f.catalog.Models...)
}
