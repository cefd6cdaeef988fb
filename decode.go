package fixtures

import "github.com/goliatone/go-fixtures/internal/hydrate"

// DecodeContext identifies the payload handed to decode hooks.
type DecodeContext = hydrate.Context

// DecodeOption configures Decode.
type DecodeOption[T any] = hydrate.DecoderOption[T]

// Decode resolves value with r and decodes the result into T through its JSON
// form.
func Decode[T any](r *Resolver, value any, opts ...DecodeOption[T]) (T, error) {
	return DecodeFrom[T](r, "", value, opts...)
}

// DecodeFrom is Decode with a source name reported in errors and hooks.
func DecodeFrom[T any](r *Resolver, source string, value any, opts ...DecodeOption[T]) (T, error) {
	resolved := r.Resolve(value)
	decoder := hydrate.NewDecoder[T](opts...)
	return decoder.Decode(hydrate.Context{SessionID: r.SessionID(), Source: source}, resolved)
}

// RequireResolved fails decoding when the resolved payload still holds
// markers. The error wraps ErrUnresolved.
func RequireResolved[T any]() DecodeOption[T] {
	return hydrate.WithPreHook[T](func(_ hydrate.Context, payload any) (any, error) {
		if err := CheckResolved(payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
}

// DecodeUseNumber decodes numbers as json.Number.
func DecodeUseNumber[T any]() DecodeOption[T] {
	return hydrate.WithUseNumber[T]()
}

// DecodeDisallowUnknownFields rejects fields T does not declare.
func DecodeDisallowUnknownFields[T any]() DecodeOption[T] {
	return hydrate.WithDisallowUnknownFields[T]()
}

// DecodePreHook rewrites the resolved payload before decoding.
func DecodePreHook[T any](hook func(DecodeContext, any) (any, error)) DecodeOption[T] {
	return hydrate.WithPreHook[T](hook)
}

// DecodePostHook adjusts or validates the decoded value.
func DecodePostHook[T any](hook func(DecodeContext, *T) error) DecodeOption[T] {
	return hydrate.WithPostHook[T](hook)
}
