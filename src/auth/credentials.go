package auth

import (
	"fmt"

	"cdcdocstore/src/cluster"
)

// Prompter asks the operator for admin credentials.
type Prompter interface {
	Username() (string, error)
	Password() (string, error)
}

// ResolveCredentials returns the admin credentials, prompting for whichever
// of username and password is nil. The username is always asked first.
// Configured values and whatever the operator enters, including nothing,
// are used as is.
func ResolveCredentials(username, password *string, prompter Prompter) (cluster.Credentials, error) {
	var creds cluster.Credentials
	var err error
	if username != nil {
		creds.Username = *username
	} else if creds.Username, err = prompter.Username(); err != nil {
		return cluster.Credentials{}, fmt.Errorf("%w: username: %w", ErrPromptFailed, err)
	}
	if password != nil {
		creds.Password = *password
	} else if creds.Password, err = prompter.Password(); err != nil {
		return cluster.Credentials{}, fmt.Errorf("%w: password: %w", ErrPromptFailed, err)
	}
	return creds, nil
}
