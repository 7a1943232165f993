// Package workflows provides high-level orchestration for KeyMaker commands.
//
// Workflows coordinate the keyring, secrets, storage and audit packages to
// implement complete user-facing features, independent of CLI concerns like
// flag parsing, spinners, and output formatting.
//
// # Sessions
//
// Every operation runs against an explicit Session: the authenticated
// identity plus at most one open keyring and its Encrypter. Authenticate
// builds a Session from the user configuration, NewSession from an identity
// and a storage.Store. There is no process-wide state.
//
//	session, err := workflows.Authenticate(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	if err := session.Open(ctx, id); err != nil {
//	    return err
//	}
//	entries, err := session.FindEntries("prod/**")
//
// Operations that change a keyring persist it and append an encrypted
// summary to its history before returning.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	if errors.Is(err, kerrors.ErrAccessDenied) {
//	    // Ask a member to share the repository
//	}
//
// # Context Usage
//
// Operations that touch storage accept a context.Context as their first
// parameter. Pure in-memory reads such as Entry and Name do not.
package workflows
