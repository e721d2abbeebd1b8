package errors

import "fmt"

// Wrap adds context to err and keeps the chain intact for errors.Is checks.
// A nil err yields nil, so it can be used inline:
//
//	return errors.Wrap(store.Save(ctx, c, rec), "failed to save asset")
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
//
//	return errors.Wrapf(err, "failed to load collection %s", name)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
