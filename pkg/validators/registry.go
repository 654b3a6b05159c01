package validators

import (
	"sync"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/registry"
	"github.com/vigil-dev/vigil/pkg/types"
)

// ProviderLocator resolves validator factories for a custom namespace.
// Plugins implement and register a locator explicitly; there is no
// runtime symbol lookup.
type ProviderLocator interface {
	// Resolve returns the factory for a namespaced validator type
	Resolve(validatorType string) (Factory, error)
}

// Registry maps namespaced validator types to factories and caches
// instantiated validators for the run. A Registry belongs to one run
// context and is never shared across runs.
type Registry struct {
	factories registry.Registry[Factory]
	locators  registry.Registry[ProviderLocator]

	mu        sync.Mutex
	instances map[string]Validator
}

// NewRegistry creates an empty registry. Most callers want
// NewCoreRegistry.
func NewRegistry() *Registry {
	return &Registry{
		factories: registry.New[Factory](),
		locators:  registry.New[ProviderLocator](),
		instances: make(map[string]Validator),
	}
}

// NewCoreRegistry creates a registry with all core validators registered
func NewCoreRegistry() *Registry {
	r := NewRegistry()
	RegisterCore(r)
	return r
}

// RegisterFactory registers a factory for a namespaced validator type
func (r *Registry) RegisterFactory(validatorType string, f Factory) error {
	if !types.ValidValidatorType(validatorType) {
		return errors.Newf(errors.ErrValidatorInvalid,
			"validator type %q is not a valid namespaced identifier", validatorType)
	}
	return r.factories.Register(validatorType, f)
}

// RegisterProvider registers a locator under a provider name
func (r *Registry) RegisterProvider(name string, locator ProviderLocator) error {
	return r.locators.Register(name, locator)
}

// Lookup returns the validator for a phase, instantiating it lazily and
// caching the instance for the rest of the run.
func (r *Registry) Lookup(phase types.ValidationPhase) (Validator, error) {
	if !types.ValidValidatorType(phase.ValidatorType) {
		return nil, errors.Newf(errors.ErrValidatorInvalid,
			"phase %q has invalid validator type %q", phase.Name, phase.ValidatorType)
	}

	if phase.IsCore() && phase.Provider != "" {
		return nil, errors.Newf(errors.ErrValidatorInvalid,
			"phase %q: core validators must not declare a provider", phase.Name)
	}
	if !phase.IsCore() && phase.Provider == "" {
		return nil, errors.Newf(errors.ErrValidatorInvalid,
			"phase %q: validator %q requires a provider", phase.Name, phase.ValidatorType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.instances[phase.ValidatorType]; ok {
		return v, nil
	}

	factory, err := r.factory(phase)
	if err != nil {
		return nil, err
	}

	v, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidatorInvalid,
			"constructing validator %q", phase.ValidatorType)
	}

	r.instances[phase.ValidatorType] = v
	return v, nil
}

func (r *Registry) factory(phase types.ValidationPhase) (Factory, error) {
	if phase.IsCore() {
		factory, err := r.factories.Get(phase.ValidatorType)
		if err != nil {
			return nil, errors.Newf(errors.ErrValidatorNotFound,
				"unknown core validator %q", phase.ValidatorType)
		}
		return factory, nil
	}

	// Explicitly registered factories win over locator resolution, so a
	// plugin may pre-register specific types under its namespace
	if factory, err := r.factories.Get(phase.ValidatorType); err == nil {
		return factory, nil
	}

	locator, err := r.locators.Get(phase.Provider)
	if err != nil {
		return nil, errors.Newf(errors.ErrProviderNotFound,
			"provider %q for validator %q is not registered", phase.Provider, phase.ValidatorType)
	}

	factory, err := locator.Resolve(phase.ValidatorType)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidatorNotFound,
			"provider %q cannot resolve validator %q", phase.Provider, phase.ValidatorType)
	}
	return factory, nil
}

// ValidatePhase checks a phase at load time: the validator must resolve
// and, when it implements ParamValidator, must accept the declared
// parameters. Called by the rule loader before any rule runs.
func (r *Registry) ValidatePhase(phase types.ValidationPhase) error {
	v, err := r.Lookup(phase)
	if err != nil {
		return err
	}
	if pv, ok := v.(ParamValidator); ok {
		if err := pv.ValidateParams(phase.Params); err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid,
				"invalid parameters for phase %q (%s)", phase.Name, phase.ValidatorType)
		}
	}
	return nil
}
