package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes string-keyed maps into typed structs and validates the
// result. Decoding maps fields through `config` tags with weak type
// conversion (so "8080" binds to an int and "30s" to a time.Duration);
// validation applies go-playground/validator rules from `validate` tags.
//
// Example target struct:
//
//	type ServerConfig struct {
//	    Addr    string        `config:"addr" validate:"required"`
//	    Timeout time.Duration `config:"timeout"`
//	}
type Binder struct {
	validator *validator.Validate
}

// BindError wraps a failure from either binding stage. Stage is "decode"
// for type conversion failures and "validate" for rule violations.
type BindError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *BindError) Unwrap() error {
	return e.Err
}

// NewBinder creates a Binder with the default decode hooks and validators.
func NewBinder() *Binder {
	return &Binder{
		validator: validator.New(),
	}
}

// Bind decodes source into target (a pointer to a struct) and validates it.
// The target may be partially populated when decode succeeds but validation
// fails.
func (b *Binder) Bind(source map[string]any, target any) error {
	if err := b.decode(source, target); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := b.validator.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}

func (b *Binder) decode(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(source)
}
